package issuance

import (
	"context"

	"confhub/internal/core/id"
	"confhub/internal/domain"
)

// ListFilter narrows the voucher register.
type ListFilter struct {
	domain.ListFilter
	Status Status
}

// Repository persists vouchers.
type Repository interface {
	Create(ctx context.Context, v *Issuance) error
	SaveLines(ctx context.Context, issuanceID id.ID, lines []Line) error
	GetByID(ctx context.Context, issuanceID id.ID) (*Issuance, error)

	// GetForUpdate locks the header row.
	GetForUpdate(ctx context.Context, issuanceID id.ID) (*Issuance, error)
	GetLines(ctx context.Context, issuanceID id.ID) ([]Line, error)

	// Update writes the header status columns and the line quantities.
	Update(ctx context.Context, v *Issuance) error
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Issuance], error)
}
