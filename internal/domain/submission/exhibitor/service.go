package exhibitor

import (
	"context"

	"confhub/internal/core/numerator"
	"confhub/internal/domain/notification"
	"confhub/internal/domain/pricing"
	"confhub/internal/domain/submission"
)

// Repository persists exhibitor applications.
type Repository = submission.Repository[*Exhibitor]

// Service provides exhibitor intake and review.
type Service struct {
	*submission.Service[*Exhibitor]
	packages pricing.Table
}

// NewService creates an exhibitor service.
func NewService(cfg submission.Config[*Exhibitor], prices pricing.Prices) *Service {
	cfg.Kind = notification.KindExhibitor
	cfg.EntityName = "exhibitor"
	cfg.Prefix = numerator.PrefixExhibitor
	cfg.Statuses = submission.PendingReview
	return &Service{
		Service:  submission.NewService(cfg),
		packages: prices.Exhibitor,
	}
}

// Create captures the booth price and stores the application.
func (s *Service) Create(ctx context.Context, e *Exhibitor) error {
	if err := e.Validate(ctx); err != nil {
		return err
	}
	if err := submission.CheckOption("selected_package", e.SelectedPackage, s.packages.Keys()); err != nil {
		return err
	}

	price, _ := s.packages.Lookup(e.SelectedPackage)
	e.Amount = &price
	e.Currency = pricing.Currency
	e.Status = submission.StatusPending

	return s.Service.Create(ctx, e, nil)
}
