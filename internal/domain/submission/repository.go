package submission

import (
	"context"

	"confhub/internal/core/id"
	"confhub/internal/domain"
)

// Repository is the persistence contract shared by all submission tables.
type Repository[T Record] interface {
	Create(ctx context.Context, rec T) error
	GetByID(ctx context.Context, id id.ID) (T, error)

	// GetForUpdate reads the row with SELECT ... FOR UPDATE. Call inside a transaction.
	GetForUpdate(ctx context.Context, id id.ID) (T, error)

	// Update writes the given columns and bumps updated_at.
	Update(ctx context.Context, id id.ID, columns map[string]any) error

	Delete(ctx context.Context, id id.ID) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error)
}

// FileRemover deletes stored uploads.
type FileRemover interface {
	Remove(path string) error
}
