package registration

import (
	"context"

	"confhub/internal/core/numerator"
	"confhub/internal/domain/notification"
	"confhub/internal/domain/pricing"
	"confhub/internal/domain/submission"
)

// Repository persists registrations.
type Repository = submission.Repository[*Registration]

// Service provides registration intake and review.
type Service struct {
	*submission.Service[*Registration]
	fees pricing.Table
}

// NewService creates a registration service. Kind, name, prefix and statuses are filled in.
func NewService(cfg submission.Config[*Registration], prices pricing.Prices) *Service {
	cfg.Kind = notification.KindRegistration
	cfg.EntityName = "registration"
	cfg.Prefix = numerator.PrefixRegistration
	cfg.Statuses = submission.PendingReview
	return &Service{
		Service: submission.NewService(cfg),
		fees:    prices.Registration,
	}
}

// Create captures the fee for the registration type and stores the registration.
func (s *Service) Create(ctx context.Context, reg *Registration) error {
	if err := reg.Validate(ctx); err != nil {
		return err
	}
	if err := submission.CheckOption("registration_type", reg.RegistrationType, s.fees.Keys()); err != nil {
		return err
	}

	fee, _ := s.fees.Lookup(reg.RegistrationType)
	reg.Amount = &fee
	reg.Currency = pricing.Currency
	reg.Status = submission.StatusPending

	return s.Service.Create(ctx, reg, nil)
}
