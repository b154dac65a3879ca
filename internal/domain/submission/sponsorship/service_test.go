package sponsorship

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confhub/internal/core/apperror"
	"confhub/internal/core/types"
	"confhub/internal/domain/pricing"
	"confhub/internal/domain/submission"
	"confhub/internal/domain/submission/submissiontest"
)

func validSponsorship(pkg string) *Sponsorship {
	s := New()
	s.OrganizationName = "Acme Health"
	s.ContactPerson = "Wile E. Coyote"
	s.Email = "wile@acme.example"
	s.Phone = "+1 555 0100"
	s.SelectedPackage = pkg
	return s
}

func TestService_Create(t *testing.T) {
	h := submissiontest.NewHarness()
	repo := submissiontest.NewMemoryRepo[*Sponsorship]()
	svc := NewService(submissiontest.Config[*Sponsorship](h, repo), pricing.Default())
	ctx := context.Background()

	sp := validSponsorship("gold")
	require.NoError(t, svc.Create(ctx, sp))
	assert.True(t, sp.Amount.Equal(types.NewMoney(7500)))
	assert.Regexp(t, `^SPN-`, sp.Reference)
	assert.Empty(t, sp.Documents())

	err := svc.Create(ctx, validSponsorship("diamond"))
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, 1, repo.Len())
}

func TestSponsorship_Validate(t *testing.T) {
	sp := validSponsorship("gold")
	sp.ContactPerson = ""
	sp.Email = "wile"

	err := sp.Validate(context.Background())
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, map[string]string{"contact_person": "is required"}, appErr.Details["fields"])

	sp.ContactPerson = "Wile"
	appErr, _ = apperror.AsAppError(sp.Validate(context.Background()))
	assert.Equal(t, map[string]string{"email": "must be a valid email"}, appErr.Details["fields"])

	assert.Equal(t, submission.StatusPending, New().Status)
}

func TestService_Create_MissingFields(t *testing.T) {
	fields := map[string]func(s *Sponsorship){
		"organization_name": func(s *Sponsorship) { s.OrganizationName = "" },
		"contact_person":    func(s *Sponsorship) { s.ContactPerson = "" },
		"email":             func(s *Sponsorship) { s.Email = "" },
		"phone":             func(s *Sponsorship) { s.Phone = " " },
		"selected_package":  func(s *Sponsorship) { s.SelectedPackage = "" },
	}

	for field, blank := range fields {
		t.Run(field, func(t *testing.T) {
			h := submissiontest.NewHarness()
			repo := submissiontest.NewMemoryRepo[*Sponsorship]()
			svc := NewService(submissiontest.Config[*Sponsorship](h, repo), pricing.Default())

			sp := validSponsorship("gold")
			blank(sp)

			err := svc.Create(context.Background(), sp)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
			appErr, _ := apperror.AsAppError(err)
			assert.Contains(t, appErr.Details["fields"], field)
			assert.Zero(t, repo.Len())
			assert.Empty(t, h.Outbox.Messages)
		})
	}
}
