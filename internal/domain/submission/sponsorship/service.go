package sponsorship

import (
	"context"

	"confhub/internal/core/numerator"
	"confhub/internal/domain/notification"
	"confhub/internal/domain/pricing"
	"confhub/internal/domain/submission"
)

// Repository persists sponsorship applications.
type Repository = submission.Repository[*Sponsorship]

// Service provides sponsorship intake and review.
type Service struct {
	*submission.Service[*Sponsorship]
	packages pricing.Table
}

// NewService creates a sponsorship service.
func NewService(cfg submission.Config[*Sponsorship], prices pricing.Prices) *Service {
	cfg.Kind = notification.KindSponsorship
	cfg.EntityName = "sponsorship"
	cfg.Prefix = numerator.PrefixSponsorship
	cfg.Statuses = submission.PendingReview
	return &Service{
		Service:  submission.NewService(cfg),
		packages: prices.Sponsorship,
	}
}

// Create captures the package price and stores the application.
func (s *Service) Create(ctx context.Context, sp *Sponsorship) error {
	if err := sp.Validate(ctx); err != nil {
		return err
	}
	if err := submission.CheckOption("selected_package", sp.SelectedPackage, s.packages.Keys()); err != nil {
		return err
	}

	price, _ := s.packages.Lookup(sp.SelectedPackage)
	sp.Amount = &price
	sp.Currency = pricing.Currency
	sp.Status = submission.StatusPending

	return s.Service.Create(ctx, sp, nil)
}
