// Package entity holds the columns and hooks shared by every stored record.
package entity

import (
	"context"
	"time"

	"confhub/internal/core/id"
)

// Validatable records check their own invariants before any write.
// Validate returns an apperror validation error listing the bad fields.
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseEntity is id, created_at and updated_at. Submissions and stores
// documents embed it so struct_utils picks the columns up in place.
type BaseEntity struct {
	ID        id.ID     `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{ID: id.New(), CreatedAt: now, UpdatedAt: now}
}

func (b *BaseEntity) GetID() id.ID { return b.ID }

// Touch stamps updated_at before an update is written.
func (b *BaseEntity) Touch() { b.UpdatedAt = time.Now().UTC() }
