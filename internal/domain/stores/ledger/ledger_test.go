package ledger

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confhub/internal/core/apperror"
	"confhub/internal/core/id"
	"confhub/internal/core/tx"
	"confhub/internal/core/types"
)

type memoryLedger struct {
	entries []Entry
	updates [][]Entry
}

func (m *memoryLedger) Append(_ context.Context, e *Entry) error {
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memoryLedger) ListByItem(_ context.Context, itemID id.ID) ([]Entry, error) {
	var out []Entry
	for _, e := range m.entries {
		if e.ItemID == itemID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].TransactionDate.Equal(out[j].TransactionDate) {
			return out[i].TransactionDate.Before(out[j].TransactionDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memoryLedger) Latest(ctx context.Context, itemID id.ID) (*Entry, error) {
	all, _ := m.ListByItem(ctx, itemID)
	if len(all) == 0 {
		return nil, nil
	}
	return &all[len(all)-1], nil
}

func (m *memoryLedger) UpdateBalances(_ context.Context, entries []Entry) error {
	m.updates = append(m.updates, entries)
	for _, u := range entries {
		for i := range m.entries {
			if m.entries[i].ID == u.ID {
				m.entries[i].OpeningStock = u.OpeningStock
				m.entries[i].ClosingBalance = u.ClosingBalance
			}
		}
	}
	return nil
}

type memoryStock struct {
	stock  map[id.ID]types.Quantity
	locked []id.ID
}

func (m *memoryStock) LockStock(_ context.Context, itemID id.ID) (string, types.Quantity, error) {
	q, ok := m.stock[itemID]
	if !ok {
		return "", 0, apperror.NewNotFound("stores item", itemID.String())
	}
	m.locked = append(m.locked, itemID)
	return "PEN-001", q, nil
}

func (m *memoryStock) SetStock(_ context.Context, itemID id.ID, q types.Quantity) error {
	m.stock[itemID] = q
	return nil
}

func (m *memoryStock) ItemIDs(context.Context) ([]id.ID, error) {
	ids := make([]id.ID, 0, len(m.stock))
	for k := range m.stock {
		ids = append(ids, k)
	}
	return ids, nil
}

func q(units int64) types.Quantity { return types.NewQuantity(units) }

func day(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }

func newTestService(itemID id.ID, stock types.Quantity) (*Service, *memoryLedger, *memoryStock) {
	repo := &memoryLedger{}
	st := &memoryStock{stock: map[id.ID]types.Quantity{itemID: stock}}
	svc := NewService(repo, st, tx.Inline, nil)
	return svc, repo, st
}

func TestReplay_WorkedExample(t *testing.T) {
	entries := []Entry{
		{TransactionType: TypeOpening, OpeningStock: q(100), ClosingBalance: q(100)},
		{TransactionType: TypeReceived, QuantityReceived: q(50)},
		{TransactionType: TypeIssued, QuantityIssued: q(30)},
	}

	changed := Replay(entries)
	assert.Equal(t, []int{1, 2}, changed)

	closings := []types.Quantity{entries[0].ClosingBalance, entries[1].ClosingBalance, entries[2].ClosingBalance}
	assert.Equal(t, []types.Quantity{q(100), q(150), q(120)}, closings)
	assert.Equal(t, q(100), entries[1].OpeningStock)
	assert.Equal(t, q(150), entries[2].OpeningStock)

	assert.Empty(t, Replay(entries), "second replay must be a no-op")
}

func TestReplay_FirstEntryKeepsBaseline(t *testing.T) {
	entries := []Entry{
		{OpeningStock: q(7), QuantityReceived: q(3), ClosingBalance: q(99)},
	}
	assert.Equal(t, []int{0}, Replay(entries))
	assert.Equal(t, q(7), entries[0].OpeningStock)
	assert.Equal(t, q(10), entries[0].ClosingBalance)

	assert.Empty(t, Replay(nil))
}

func TestService_Post(t *testing.T) {
	itemID := id.New()
	svc, repo, st := newTestService(itemID, q(10))
	ctx := context.Background()

	entries, err := svc.Post(ctx, []Movement{
		{ItemID: itemID, Date: day(2), Type: TypeReceived, Reference: "GRN-2026-00001", Received: q(5)},
		{ItemID: itemID, Date: day(3), Type: TypeIssued, Reference: "SIV-2026-00001", Issued: q(12)},
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, q(10), entries[0].OpeningStock)
	assert.Equal(t, q(15), entries[0].ClosingBalance)
	assert.Equal(t, q(15), entries[1].OpeningStock)
	assert.Equal(t, q(3), entries[1].ClosingBalance)
	assert.Equal(t, q(3), st.stock[itemID])
	assert.Len(t, repo.entries, 2)
	assert.Equal(t, []id.ID{itemID, itemID}, st.locked)
}

func TestService_Post_InsufficientStock(t *testing.T) {
	itemID := id.New()
	svc, repo, st := newTestService(itemID, q(4))

	_, err := svc.Post(context.Background(), []Movement{
		{ItemID: itemID, Date: day(2), Type: TypeIssued, Issued: q(5)},
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "PEN-001", appErr.Details["item"])
	assert.Equal(t, "5", appErr.Details["requested"])
	assert.Equal(t, "4", appErr.Details["available"])
	assert.Empty(t, repo.entries)
	assert.Equal(t, q(4), st.stock[itemID])
}

func TestService_Recalculate(t *testing.T) {
	itemID := id.New()
	svc, repo, st := newTestService(itemID, q(999))
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// balances drifted: stored as if each entry started from zero
	repo.entries = []Entry{
		{ID: id.New(), ItemID: itemID, TransactionDate: day(1), TransactionType: TypeOpening,
			OpeningStock: q(100), ClosingBalance: q(100), CreatedAt: created},
		{ID: id.New(), ItemID: itemID, TransactionDate: day(2), TransactionType: TypeReceived,
			QuantityReceived: q(50), ClosingBalance: q(50), CreatedAt: created},
		{ID: id.New(), ItemID: itemID, TransactionDate: day(3), TransactionType: TypeIssued,
			QuantityIssued: q(30), ClosingBalance: q(-30), CreatedAt: created},
	}

	res, err := svc.Recalculate(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Updated)
	assert.Equal(t, q(120), res.ClosingBalance)
	assert.Equal(t, q(120), st.stock[itemID])
	require.Len(t, repo.updates, 1)
	assert.Len(t, repo.updates[0], 2)

	stored, _ := repo.ListByItem(ctx, itemID)
	assert.Equal(t, q(150), stored[1].ClosingBalance)
	assert.Equal(t, q(120), stored[2].ClosingBalance)

	again, err := svc.Recalculate(ctx, itemID)
	require.NoError(t, err)
	assert.Zero(t, again.Updated)
	assert.Equal(t, q(120), again.ClosingBalance)
	assert.Len(t, repo.updates, 1)
}

func TestService_Recalculate_NoEntriesLeavesStock(t *testing.T) {
	itemID := id.New()
	svc, _, st := newTestService(itemID, q(8))

	res, err := svc.Recalculate(context.Background(), itemID)
	require.NoError(t, err)
	assert.Zero(t, res.Updated)
	assert.Equal(t, q(8), res.ClosingBalance)
	assert.Equal(t, q(8), st.stock[itemID])
}

func TestService_Recalculate_UnknownItem(t *testing.T) {
	svc, _, _ := newTestService(id.New(), 0)
	_, err := svc.Recalculate(context.Background(), id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_AddManual(t *testing.T) {
	ctx := context.Background()

	t.Run("opening on empty item", func(t *testing.T) {
		itemID := id.New()
		svc, repo, st := newTestService(itemID, 0)

		entry, err := svc.AddManual(ctx, itemID, ManualEntry{Type: TypeOpening, Date: day(1), Quantity: q(40)})
		require.NoError(t, err)
		assert.Equal(t, q(40), entry.ClosingBalance)
		assert.Equal(t, q(40), st.stock[itemID])
		assert.Len(t, repo.entries, 1)

		_, err = svc.AddManual(ctx, itemID, ManualEntry{Type: TypeOpening, Date: day(2), Quantity: q(5)})
		assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule))
	})

	t.Run("signed adjustments", func(t *testing.T) {
		itemID := id.New()
		svc, _, st := newTestService(itemID, q(10))

		up, err := svc.AddManual(ctx, itemID, ManualEntry{Type: TypeAdjustment, Date: day(4), Quantity: q(2)})
		require.NoError(t, err)
		assert.Equal(t, q(2), up.QuantityReceived)

		down, err := svc.AddManual(ctx, itemID, ManualEntry{Type: TypeAdjustment, Date: day(4), Quantity: q(-5)})
		require.NoError(t, err)
		assert.Equal(t, q(5), down.QuantityIssued)
		assert.Equal(t, "ADJUSTMENT", down.ReferenceNumber)
		assert.Equal(t, q(7), st.stock[itemID])

		_, err = svc.AddManual(ctx, itemID, ManualEntry{Type: TypeAdjustment, Date: day(4), Quantity: q(-8)})
		assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
	})

	t.Run("backdated entry is rejected", func(t *testing.T) {
		itemID := id.New()
		svc, _, _ := newTestService(itemID, q(10))
		_, err := svc.AddManual(ctx, itemID, ManualEntry{Type: TypeAdjustment, Date: day(5), Quantity: q(1)})
		require.NoError(t, err)

		_, err = svc.AddManual(ctx, itemID, ManualEntry{Type: TypeAdjustment, Date: day(4), Quantity: q(1)})
		assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule))
	})

	t.Run("invalid input", func(t *testing.T) {
		itemID := id.New()
		svc, _, _ := newTestService(itemID, q(10))

		_, err := svc.AddManual(ctx, itemID, ManualEntry{Type: TypeIssued, Quantity: q(1)})
		assert.True(t, apperror.IsValidation(err))
		_, err = svc.AddManual(ctx, itemID, ManualEntry{Type: TypeAdjustment})
		assert.True(t, apperror.IsValidation(err))
	})
}

func TestService_RecalculateAll(t *testing.T) {
	itemID := id.New()
	svc, repo, st := newTestService(itemID, q(0))
	repo.entries = []Entry{{
		ID: id.New(), ItemID: itemID, TransactionDate: day(1), TransactionType: TypeOpening,
		OpeningStock: q(5), ClosingBalance: q(5),
	}}

	items, updated, err := svc.RecalculateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, items)
	assert.Zero(t, updated)
	assert.Equal(t, q(5), st.stock[itemID])
}
