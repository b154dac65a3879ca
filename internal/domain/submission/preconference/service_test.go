package preconference

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confhub/internal/core/apperror"
	"confhub/internal/domain"
	"confhub/internal/domain/notification"
	"confhub/internal/domain/pricing"
	"confhub/internal/domain/submission"
	"confhub/internal/domain/submission/submissiontest"
)

type memoryRepo struct {
	*submissiontest.MemoryRepo[*Meeting]
	locks []string
}

func (r *memoryRepo) LockOrganizer(_ context.Context, email string) error {
	r.locks = append(r.locks, strings.ToLower(email))
	return nil
}

func (r *memoryRepo) HasActiveBooking(ctx context.Context, email string) (bool, error) {
	all, err := r.List(ctx, submissionFilter())
	if err != nil {
		return false, err
	}
	for _, m := range all.Items {
		if strings.EqualFold(m.OrganizerEmail, email) &&
			(m.ApprovalStatus == submission.StatusPending || m.ApprovalStatus == submission.StatusApproved) {
			return true, nil
		}
	}
	return false, nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo, *submissiontest.Harness) {
	t.Helper()
	h := submissiontest.NewHarness()
	repo := &memoryRepo{MemoryRepo: submissiontest.NewMemoryRepo[*Meeting]()}
	return NewService(submissiontest.Config[*Meeting](h, repo), repo, pricing.Default()), repo, h
}

func validMeeting(email string) *Meeting {
	m := New()
	m.SessionTitle = "Field epidemiology bootcamp"
	m.SessionType = "workshop"
	m.OrganizerName = "John Snow"
	m.OrganizerEmail = email
	m.OrganizerPhone = "+44 20 0000 0000"
	m.ExpectedAttendees = 40
	m.MeetingDate = time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	m.StartTime = "09:00"
	m.EndTime = "13:00"
	return m
}

func ptr[T any](v T) *T { return &v }

func TestService_Create_DerivesDurationAndPrice(t *testing.T) {
	svc, repo, h := newTestService(t)

	m := validMeeting("snow@example.org")
	require.NoError(t, svc.Create(context.Background(), m))

	assert.True(t, m.DurationHours.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, "8000.00", m.Amount.StringFixed(2))
	assert.Equal(t, submission.StatusPending, m.ApprovalStatus)
	assert.Equal(t, submission.PaymentPending, m.PaymentStatus)
	assert.Equal(t, []string{"snow@example.org"}, repo.locks)
	assert.Equal(t, "2026-11-02", h.Outbox.Messages[0].Data["meeting_date"])
}

func TestService_Create_MinimumDuration(t *testing.T) {
	svc, repo, _ := newTestService(t)

	m := validMeeting("snow@example.org")
	m.EndTime = "12:00"
	require.NoError(t, svc.Create(context.Background(), m))
	assert.Equal(t, "6000.00", m.Amount.StringFixed(2))

	short := validMeeting("other@example.org")
	short.EndTime = "11:00"
	err := svc.Create(context.Background(), short)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	explicit := validMeeting("third@example.org")
	explicit.DurationHours = decimal.NewFromInt(2)
	assert.True(t, apperror.IsValidation(svc.Create(context.Background(), explicit)))
	assert.Equal(t, 1, repo.Len())
}

func TestService_Create_DurationLongerThanSlot(t *testing.T) {
	svc, repo, h := newTestService(t)

	m := validMeeting("snow@example.org")
	m.StartTime, m.EndTime = "09:00", "10:00"
	m.DurationHours = decimal.NewFromInt(3)

	err := svc.Create(context.Background(), m)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Details["fields"], "duration_hours")
	assert.Zero(t, repo.Len())
	assert.Empty(t, h.Outbox.Messages)

	exact := validMeeting("snow@example.org")
	exact.DurationHours = decimal.NewFromInt(4)
	require.NoError(t, svc.Create(context.Background(), exact))
	assert.Equal(t, "8000.00", exact.Amount.StringFixed(2))
}

func TestService_Create_MissingFields(t *testing.T) {
	fields := map[string]func(m *Meeting){
		"session_title":      func(m *Meeting) { m.SessionTitle = "" },
		"session_type":       func(m *Meeting) { m.SessionType = "" },
		"organizer_name":     func(m *Meeting) { m.OrganizerName = "" },
		"organizer_email":    func(m *Meeting) { m.OrganizerEmail = "" },
		"organizer_phone":    func(m *Meeting) { m.OrganizerPhone = " " },
		"start_time":         func(m *Meeting) { m.StartTime = "" },
		"end_time":           func(m *Meeting) { m.EndTime = "" },
		"meeting_date":       func(m *Meeting) { m.MeetingDate = time.Time{} },
		"expected_attendees": func(m *Meeting) { m.ExpectedAttendees = 0 },
	}

	for field, blank := range fields {
		t.Run(field, func(t *testing.T) {
			svc, repo, h := newTestService(t)
			m := validMeeting("snow@example.org")
			blank(m)

			err := svc.Create(context.Background(), m)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
			appErr, _ := apperror.AsAppError(err)
			assert.Contains(t, appErr.Details["fields"], field)
			assert.Zero(t, repo.Len())
			assert.Empty(t, h.Outbox.Messages)
		})
	}
}

func TestService_Create_Bounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *Meeting)
	}{
		{"no attendees", func(m *Meeting) { m.ExpectedAttendees = 0 }},
		{"too many attendees", func(m *Meeting) { m.ExpectedAttendees = 201 }},
		{"end before start", func(m *Meeting) { m.StartTime, m.EndTime = "14:00", "09:00" }},
		{"bad time format", func(m *Meeting) { m.StartTime = "9am" }},
		{"bad email", func(m *Meeting) { m.OrganizerEmail = "john" }},
		{"unknown session type", func(m *Meeting) { m.SessionType = "gala" }},
		{"no date", func(m *Meeting) { m.MeetingDate = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService(t)
			m := validMeeting("snow@example.org")
			tt.mutate(m)

			err := svc.Create(context.Background(), m)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
			assert.Zero(t, repo.Len())
		})
	}
}

func TestService_Create_DuplicateOrganizer(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	first := validMeeting("snow@example.org")
	require.NoError(t, svc.Create(ctx, first))

	err := svc.Create(ctx, validMeeting("SNOW@example.org"))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
	assert.Equal(t, 1, repo.Len())

	// once the first booking is rejected the organizer may book again
	_, err = svc.SetStatus(ctx, first.ID, StatusChange{Approval: ptr(submission.StatusRejected)})
	require.NoError(t, err)
	require.NoError(t, svc.Create(ctx, validMeeting("snow@example.org")))
	assert.Equal(t, 2, repo.Len())
}

func TestService_SetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("paid requires approval", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		m := validMeeting("snow@example.org")
		require.NoError(t, svc.Create(ctx, m))

		_, err := svc.SetStatus(ctx, m.ID, StatusChange{Payment: ptr(submission.PaymentPaid)})
		require.Error(t, err)
		assert.True(t, apperror.HasCode(err, apperror.CodePaymentRequiresApproval))
		assert.Empty(t, repo.Updates)
	})

	t.Run("approve and pay in one call", func(t *testing.T) {
		svc, repo, h := newTestService(t)
		m := validMeeting("snow@example.org")
		require.NoError(t, svc.Create(ctx, m))

		updated, err := svc.SetStatus(ctx, m.ID, StatusChange{
			Approval: ptr(submission.StatusApproved),
			Payment:  ptr(submission.PaymentPaid),
		})
		require.NoError(t, err)
		assert.Equal(t, submission.StatusApproved, updated.ApprovalStatus)
		assert.Equal(t, submission.PaymentPaid, updated.PaymentStatus)
		assert.Equal(t, []map[string]any{{
			"approval_status": submission.StatusApproved,
			"payment_status":  submission.PaymentPaid,
		}}, repo.Updates)
		assert.Equal(t, []notification.Event{
			notification.EventReceived, notification.EventApproved, notification.EventPaid,
		}, h.Outbox.Events())
	})

	t.Run("cancel is always allowed", func(t *testing.T) {
		svc, _, h := newTestService(t)
		m := validMeeting("snow@example.org")
		require.NoError(t, svc.Create(ctx, m))

		updated, err := svc.SetStatus(ctx, m.ID, StatusChange{Payment: ptr(submission.PaymentCancelled)})
		require.NoError(t, err)
		assert.Equal(t, submission.PaymentCancelled, updated.PaymentStatus)
		assert.Equal(t, submission.StatusPending, updated.ApprovalStatus)
		assert.Equal(t, notification.EventCancelled, h.Outbox.Messages[1].Event)
	})

	t.Run("same values are a no-op", func(t *testing.T) {
		svc, repo, h := newTestService(t)
		m := validMeeting("snow@example.org")
		require.NoError(t, svc.Create(ctx, m))

		_, err := svc.SetStatus(ctx, m.ID, StatusChange{
			Approval: ptr(submission.StatusPending),
			Payment:  ptr(submission.PaymentPending),
		})
		require.NoError(t, err)
		assert.Empty(t, repo.Updates)
		assert.Len(t, h.Outbox.Messages, 1)
	})

	t.Run("empty and invalid changes", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		m := validMeeting("snow@example.org")
		require.NoError(t, svc.Create(ctx, m))

		_, err := svc.SetStatus(ctx, m.ID, StatusChange{})
		assert.True(t, apperror.IsValidation(err))
		_, err = svc.SetStatus(ctx, m.ID, StatusChange{Approval: ptr(submission.StatusSubmitted)})
		assert.True(t, apperror.IsValidation(err))
		_, err = svc.SetStatus(ctx, m.ID, StatusChange{Payment: ptr(submission.PaymentStatus("refunded"))})
		assert.True(t, apperror.IsValidation(err))
	})
}

func submissionFilter() domain.ListFilter { return domain.DefaultListFilter() }
