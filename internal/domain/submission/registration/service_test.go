package registration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confhub/internal/core/apperror"
	"confhub/internal/core/types"
	"confhub/internal/domain/audit"
	"confhub/internal/domain/notification"
	"confhub/internal/domain/pricing"
	"confhub/internal/domain/submission"
	"confhub/internal/domain/submission/submissiontest"
)

func newTestService(t *testing.T) (*Service, *submissiontest.MemoryRepo[*Registration], *submissiontest.Harness) {
	t.Helper()
	h := submissiontest.NewHarness()
	repo := submissiontest.NewMemoryRepo[*Registration]()
	return NewService(submissiontest.Config[*Registration](h, repo), pricing.Default()), repo, h
}

func validRegistration(regType string) *Registration {
	r := New()
	r.FullName = "Ada Lovelace"
	r.Email = "ada@example.org"
	r.Phone = "+44 20 7946 0000"
	r.Institution = "Analytical Society"
	r.Country = "UK"
	r.RegistrationType = regType
	r.PaymentProofPath = "uploads/registrations/1-proof.pdf"
	r.PassportPhotoPath = "uploads/registrations/1-photo.jpg"
	return r
}

func TestService_Create(t *testing.T) {
	svc, repo, h := newTestService(t)
	ctx := context.Background()

	reg := validRegistration("international")
	require.NoError(t, svc.Create(ctx, reg))

	assert.Equal(t, 1, repo.Len())
	assert.Regexp(t, `^REG-\d{4}-00001$`, reg.Reference)
	assert.Equal(t, submission.StatusPending, reg.Status)
	require.NotNil(t, reg.Amount)
	assert.True(t, reg.Amount.Equal(types.NewMoney(300)))
	assert.Equal(t, []notification.Event{notification.EventReceived}, h.Outbox.Events())
}

func TestService_Create_IdenticalSubmissionsCreateTwoRows(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	first := validRegistration("local")
	second := validRegistration("local")
	require.NoError(t, svc.Create(ctx, first))
	require.NoError(t, svc.Create(ctx, second))

	assert.Equal(t, 2, repo.Len())
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.Reference, second.Reference)
}

func TestService_Create_MissingFields(t *testing.T) {
	fields := map[string]func(r *Registration){
		"full_name":         func(r *Registration) { r.FullName = "" },
		"email":             func(r *Registration) { r.Email = "" },
		"phone":             func(r *Registration) { r.Phone = " " },
		"institution":       func(r *Registration) { r.Institution = "" },
		"country":           func(r *Registration) { r.Country = "" },
		"registration_type": func(r *Registration) { r.RegistrationType = "" },
		"payment_proof":     func(r *Registration) { r.PaymentProofPath = "" },
		"passport_photo":    func(r *Registration) { r.PassportPhotoPath = "" },
	}

	for field, blank := range fields {
		t.Run(field, func(t *testing.T) {
			svc, repo, h := newTestService(t)
			reg := validRegistration("local")
			blank(reg)

			err := svc.Create(context.Background(), reg)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))

			appErr, _ := apperror.AsAppError(err)
			assert.Contains(t, appErr.Details["fields"], field)
			assert.Zero(t, repo.Len())
			assert.Empty(t, h.Outbox.Messages)
		})
	}
}

func TestService_Create_RejectsBadEmailAndType(t *testing.T) {
	svc, _, _ := newTestService(t)

	reg := validRegistration("local")
	reg.Email = "not-an-email"
	assert.True(t, apperror.IsValidation(svc.Create(context.Background(), reg)))

	reg = validRegistration("vip")
	assert.True(t, apperror.IsValidation(svc.Create(context.Background(), reg)))
}

func TestService_AmountIsCapturedAtSubmission(t *testing.T) {
	svc, _, _ := newTestService(t)
	reg := validRegistration("local")
	require.NoError(t, svc.Create(context.Background(), reg))

	// a later price change must not touch the stored amount
	svc.fees["local"] = types.NewMoney(250)

	got, err := svc.GetByID(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(types.NewMoney(100)))
}

func TestService_SetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("approve sends one e-mail and audits", func(t *testing.T) {
		svc, repo, h := newTestService(t)
		reg := validRegistration("international")
		require.NoError(t, svc.Create(ctx, reg))

		updated, err := svc.SetStatus(ctx, reg.ID, submission.StatusApproved)
		require.NoError(t, err)
		assert.Equal(t, submission.StatusApproved, updated.Status)
		assert.Equal(t, []map[string]any{{"status": submission.StatusApproved}}, repo.Updates)
		assert.Equal(t, []notification.Event{notification.EventReceived, notification.EventApproved}, h.Outbox.Events())

		require.Len(t, h.Audit.Entries, 1)
		assert.Equal(t, audit.ActionStatusChange, h.Audit.Entries[0].Action)
		assert.Equal(t, audit.Diff(
			map[string]any{"status": submission.StatusPending},
			map[string]any{"status": submission.StatusApproved},
		), h.Audit.Changes[0])

		got, err := svc.GetByID(ctx, reg.ID)
		require.NoError(t, err)
		assert.Equal(t, submission.StatusApproved, got.Status)
	})

	t.Run("same status is a silent no-op", func(t *testing.T) {
		svc, repo, h := newTestService(t)
		reg := validRegistration("local")
		require.NoError(t, svc.Create(ctx, reg))
		_, err := svc.SetStatus(ctx, reg.ID, submission.StatusApproved)
		require.NoError(t, err)

		_, err = svc.SetStatus(ctx, reg.ID, submission.StatusApproved)
		require.NoError(t, err)

		assert.Len(t, repo.Updates, 1)
		assert.Len(t, h.Audit.Entries, 1)
		assert.Equal(t, []notification.Event{notification.EventReceived, notification.EventApproved}, h.Outbox.Events())
	})

	t.Run("rejected can be corrected to approved", func(t *testing.T) {
		svc, _, h := newTestService(t)
		reg := validRegistration("student")
		require.NoError(t, svc.Create(ctx, reg))

		_, err := svc.SetStatus(ctx, reg.ID, submission.StatusRejected)
		require.NoError(t, err)
		_, err = svc.SetStatus(ctx, reg.ID, submission.StatusApproved)
		require.NoError(t, err)

		assert.Equal(t, []notification.Event{
			notification.EventReceived, notification.EventRejected, notification.EventApproved,
		}, h.Outbox.Events())
	})

	t.Run("back to pending sends nothing", func(t *testing.T) {
		svc, _, h := newTestService(t)
		reg := validRegistration("student")
		require.NoError(t, svc.Create(ctx, reg))
		_, err := svc.SetStatus(ctx, reg.ID, submission.StatusRejected)
		require.NoError(t, err)

		updated, err := svc.SetStatus(ctx, reg.ID, submission.StatusPending)
		require.NoError(t, err)
		assert.Equal(t, submission.StatusPending, updated.Status)
		assert.Len(t, h.Outbox.Messages, 2)
	})

	t.Run("unknown status", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		reg := validRegistration("local")
		require.NoError(t, svc.Create(ctx, reg))

		_, err := svc.SetStatus(ctx, reg.ID, submission.StatusSubmitted)
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("missing row", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.SetStatus(ctx, New().ID, submission.StatusApproved)
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestService_Delete(t *testing.T) {
	svc, repo, h := newTestService(t)
	ctx := context.Background()
	reg := validRegistration("local")
	require.NoError(t, svc.Create(ctx, reg))

	require.NoError(t, svc.Delete(ctx, reg.ID))

	assert.Zero(t, repo.Len())
	assert.ElementsMatch(t, []string{reg.PaymentProofPath, reg.PassportPhotoPath}, h.Files.Removed)
	require.Len(t, h.Audit.Entries, 1)
	assert.Equal(t, audit.ActionDelete, h.Audit.Entries[0].Action)

	history, err := svc.History(ctx, reg.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	assert.True(t, apperror.IsNotFound(svc.Delete(ctx, reg.ID)))
}
