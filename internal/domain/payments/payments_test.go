package payments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confhub/internal/core/apperror"
	"confhub/internal/core/id"
	"confhub/internal/core/types"
	"confhub/internal/domain/pricing"
)

type staticReader []Row

func (r staticReader) PaymentRows(context.Context) ([]Row, error) { return r, nil }

func money(s string) *types.Money {
	m := types.MustMoney(s)
	return &m
}

func at(day int) time.Time { return time.Date(2026, 2, day, 12, 0, 0, 0, time.UTC) }

func sampleRows() staticReader {
	return staticReader{
		{Source: SourceRegistration, ID: id.New(), Reference: "REG-2026-00001", Name: "Alice Mwale", Email: "alice@example.org",
			Category: "local", Amount: money("100"), Currency: "USD", Status: "pending", PaymentProofPath: "uploads/payments/a.pdf", CreatedAt: at(1)},
		{Source: SourceSponsorship, ID: id.New(), Reference: "SPN-2026-00001", Name: "Ruth Zulu", Email: "ruth@acme.example",
			Organization: "Acme Health", Category: "gold", Amount: money("7500"), Currency: "USD", Status: "approved", CreatedAt: at(2)},
		{Source: SourceRegistration, ID: id.New(), Reference: "REG-2026-00002", Name: "bob Tembo", Email: "bob@example.org",
			Category: "student", Status: "rejected", CreatedAt: at(3)},
		{Source: SourceRegistration, ID: id.New(), Reference: "REG-2026-00003", Name: "Carol Banda", Email: "carol@example.org",
			Category: "international", Amount: money("300"), Status: "approved", CreatedAt: at(3)},
	}
}

func TestService_View_DefaultsNewestFirst(t *testing.T) {
	svc := NewService(sampleRows(), pricing.Default())

	view, err := svc.View(context.Background(), Filter{})
	require.NoError(t, err)
	require.Equal(t, 4, view.TotalCount)

	refs := make([]string, 0, len(view.Items))
	for _, r := range view.Items {
		refs = append(refs, r.Reference)
	}
	// Equal timestamps keep storage order.
	assert.Equal(t, []string{"REG-2026-00002", "REG-2026-00003", "SPN-2026-00001", "REG-2026-00001"}, refs)

	assert.Equal(t, "7950", view.Totals.All.String())
	assert.Equal(t, "100", view.Totals.Pending.String())
	assert.Equal(t, "7800", view.Totals.Approved.String())
	assert.Equal(t, "50", view.Totals.Rejected.String())
}

func TestService_View_LegacyAmountFallsBackToPrice(t *testing.T) {
	svc := NewService(sampleRows(), pricing.Default())
	view, err := svc.View(context.Background(), Filter{Search: "REG-2026-00002"})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "50", view.Items[0].Amount.String())
	assert.Equal(t, pricing.Currency, view.Items[0].Currency)
	assert.False(t, view.Items[0].PaymentProof)
}

func TestService_View_CapturedAmountSurvivesPriceChange(t *testing.T) {
	prices := pricing.Default()
	prices.Registration["local"] = types.NewMoney(150)
	svc := NewService(sampleRows(), prices)

	view, err := svc.View(context.Background(), Filter{Category: "local"})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "100", view.Items[0].Amount.String())
}

func TestService_View_Filters(t *testing.T) {
	from, to := at(2), at(2).Add(time.Hour)
	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"by source", Filter{Source: SourceSponsorship}, 1},
		{"by status", Filter{Status: "approved"}, 2},
		{"search is case-insensitive", Filter{Search: "BOB"}, 1},
		{"search matches organization", Filter{Search: "acme health"}, 1},
		{"date range", Filter{From: &from, To: &to}, 1},
		{"no match", Filter{Category: "platinum"}, 0},
	}
	svc := NewService(sampleRows(), pricing.Default())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := svc.View(context.Background(), tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, view.TotalCount)
		})
	}
}

func TestService_View_Sort(t *testing.T) {
	svc := NewService(sampleRows(), pricing.Default())

	view, err := svc.View(context.Background(), Filter{Sort: "amount"})
	require.NoError(t, err)
	assert.Equal(t, "50", view.Items[0].Amount.String())
	assert.Equal(t, "7500", view.Items[3].Amount.String())

	view, err = svc.View(context.Background(), Filter{Sort: "name"})
	require.NoError(t, err)
	assert.Equal(t, "Alice Mwale", view.Items[0].Name)
	assert.Equal(t, "bob Tembo", view.Items[1].Name)

	_, err = svc.View(context.Background(), Filter{Sort: "email"})
	assert.True(t, apperror.IsValidation(err))
}
