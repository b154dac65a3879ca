package item

import (
	"context"

	"confhub/internal/core/id"
	"confhub/internal/domain"
)

// Repository persists items.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, itemID id.ID) (*Item, error)

	// Update writes the descriptive columns; current_stock is left alone.
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, itemID id.ID) error
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Item], error)

	// IsReferenced reports whether ledger entries or document lines point at the item.
	IsReferenced(ctx context.Context, itemID id.ID) (bool, error)
}
