package preconference

import (
	"context"
	"fmt"

	"confhub/internal/core/apperror"
	"confhub/internal/core/id"
	"confhub/internal/core/numerator"
	"confhub/internal/domain/notification"
	"confhub/internal/domain/pricing"
	"confhub/internal/domain/submission"
)

// Repository persists meetings.
type Repository interface {
	submission.Repository[*Meeting]

	// LockOrganizer takes a transaction-scoped advisory lock on the organizer e-mail.
	LockOrganizer(ctx context.Context, email string) error

	// HasActiveBooking reports whether the organizer has a pending or approved meeting.
	HasActiveBooking(ctx context.Context, email string) (bool, error)
}

// StatusChange is a partial update of the two review axes.
type StatusChange struct {
	Approval *submission.Status
	Payment  *submission.PaymentStatus
}

// Service provides booking intake and the dual-axis review.
type Service struct {
	*submission.Service[*Meeting]
	repo   Repository
	prices pricing.Prices
}

// NewService creates a pre-conference service.
func NewService(cfg submission.Config[*Meeting], repo Repository, prices pricing.Prices) *Service {
	cfg.Kind = notification.KindPreconference
	cfg.EntityName = "pre-conference meeting"
	cfg.Prefix = numerator.PrefixPreconference
	cfg.Statuses = nil
	cfg.Repo = repo
	return &Service{
		Service: submission.NewService(cfg),
		repo:    repo,
		prices:  prices,
	}
}

// Create derives the duration when it is missing, prices the slot and stores the booking.
// An organizer with a pending or approved booking is rejected.
func (s *Service) Create(ctx context.Context, m *Meeting) error {
	if m.DurationHours.IsZero() && m.StartTime != "" && m.EndTime != "" {
		if span, err := Span(m.StartTime, m.EndTime); err == nil {
			m.DurationHours = span
		}
	}
	if err := m.Validate(ctx); err != nil {
		return err
	}

	m.Amount = s.prices.PreconferenceFee(m.DurationHours)
	m.Currency = pricing.Currency
	m.ApprovalStatus = submission.StatusPending
	m.PaymentStatus = submission.PaymentPending

	return s.Service.Create(ctx, m, func(ctx context.Context) error {
		if err := s.repo.LockOrganizer(ctx, m.OrganizerEmail); err != nil {
			return fmt.Errorf("lock organizer: %w", err)
		}
		active, err := s.repo.HasActiveBooking(ctx, m.OrganizerEmail)
		if err != nil {
			return fmt.Errorf("check active booking: %w", err)
		}
		if active {
			return apperror.NewDuplicate("pre-conference meeting", "organizer_email", m.OrganizerEmail)
		}
		return nil
	})
}

// SetStatus updates either axis. Paid requires the resulting approval status to be approved.
func (s *Service) SetStatus(ctx context.Context, meetingID id.ID, change StatusChange) (*Meeting, error) {
	if change.Approval == nil && change.Payment == nil {
		return nil, apperror.NewValidation("approval_status or payment_status is required")
	}
	if change.Approval != nil && !submission.ValidStatus(submission.PendingReview, *change.Approval) {
		return nil, apperror.NewValidation(fmt.Sprintf("invalid approval_status %q", *change.Approval))
	}
	if change.Payment != nil && !submission.ValidPaymentStatus(*change.Payment) {
		return nil, apperror.NewValidation(fmt.Sprintf("invalid payment_status %q", *change.Payment))
	}

	return s.Change(ctx, meetingID, func(m *Meeting) (submission.Mutation, error) {
		var mut submission.Mutation

		approval := m.ApprovalStatus
		if change.Approval != nil {
			approval = *change.Approval
		}
		if change.Payment != nil && *change.Payment == submission.PaymentPaid && approval != submission.StatusApproved {
			return mut, apperror.NewBusinessRule(apperror.CodePaymentRequiresApproval,
				"payment can only be confirmed for an approved meeting").
				WithDetail("approval_status", approval)
		}

		if approval != m.ApprovalStatus {
			mut.Set("approval_status", m.ApprovalStatus, approval)
			m.ApprovalStatus = approval
			if event, ok := submission.StatusEvent(approval); ok {
				mut.Events = append(mut.Events, event)
			}
		}
		if change.Payment != nil && *change.Payment != m.PaymentStatus {
			mut.Set("payment_status", m.PaymentStatus, *change.Payment)
			m.PaymentStatus = *change.Payment
			if event, ok := submission.PaymentEvent(*change.Payment); ok {
				mut.Events = append(mut.Events, event)
			}
		}
		return mut, nil
	})
}
