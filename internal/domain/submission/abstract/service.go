package abstract

import (
	"context"

	"confhub/internal/core/numerator"
	"confhub/internal/domain/notification"
	"confhub/internal/domain/submission"
)

// Repository persists abstracts.
type Repository = submission.Repository[*Abstract]

// Service provides abstract intake and review.
type Service struct {
	*submission.Service[*Abstract]
}

// NewService creates an abstract service.
func NewService(cfg submission.Config[*Abstract]) *Service {
	cfg.Kind = notification.KindAbstract
	cfg.EntityName = "abstract"
	cfg.Prefix = numerator.PrefixAbstract
	cfg.Statuses = submission.SubmittedReview
	return &Service{Service: submission.NewService(cfg)}
}

// Create stores a new abstract in the submitted state.
func (s *Service) Create(ctx context.Context, a *Abstract) error {
	a.Status = submission.StatusSubmitted
	return s.Service.Create(ctx, a, nil)
}
