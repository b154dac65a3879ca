package grn

import (
	"context"
	"time"

	"confhub/internal/core/id"
	"confhub/internal/domain"
)

// ListFilter narrows the GRN register.
type ListFilter struct {
	domain.ListFilter
	From *time.Time
	To   *time.Time
}

// Repository persists GRNs.
type Repository interface {
	Create(ctx context.Context, g *GRN) error
	SaveLines(ctx context.Context, grnID id.ID, lines []Line) error
	GetByID(ctx context.Context, grnID id.ID) (*GRN, error)
	GetLines(ctx context.Context, grnID id.ID) ([]Line, error)
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*GRN], error)
}
