// Package item provides the stores item catalog.
package item

import (
	"context"
	"strings"

	"confhub/internal/core/apperror"
	"confhub/internal/core/entity"
	"confhub/internal/core/types"
	"confhub/internal/domain"
)

// Item is a stocked article. CurrentStock is owned by the ledger.
type Item struct {
	entity.BaseEntity

	Code         string         `db:"code" json:"code"`
	Description  string         `db:"description" json:"description"`
	UnitOfIssue  string         `db:"unit_of_issue" json:"unit_of_issue"`
	CurrentStock types.Quantity `db:"current_stock" json:"current_stock"`
	MinStock     types.Quantity `db:"min_stock" json:"min_stock"`
	MaxStock     types.Quantity `db:"max_stock" json:"max_stock"`
	UnitCost     types.Money    `db:"unit_cost" json:"unit_cost"`
}

// New creates an item with a fresh id.
func New(code, description, unit string) *Item {
	return &Item{
		BaseEntity:  entity.NewBaseEntity(),
		Code:        strings.TrimSpace(code),
		Description: description,
		UnitOfIssue: unit,
		UnitCost:    types.Zero(),
	}
}

func fieldError(field, msg string) error {
	return apperror.NewFieldError(field+" "+msg, field, msg)
}

// Validate implements entity.Validatable.
func (i *Item) Validate(_ context.Context) error {
	switch {
	case strings.TrimSpace(i.Code) == "":
		return fieldError("code", "is required")
	case strings.TrimSpace(i.Description) == "":
		return fieldError("description", "is required")
	case strings.TrimSpace(i.UnitOfIssue) == "":
		return fieldError("unit_of_issue", "is required")
	case i.CurrentStock.IsNegative():
		return fieldError("current_stock", "must not be negative")
	case i.MinStock.IsNegative():
		return fieldError("min_stock", "must not be negative")
	case i.MaxStock.IsNegative():
		return fieldError("max_stock", "must not be negative")
	case i.MinStock > i.MaxStock:
		return fieldError("min_stock", "must not exceed max_stock")
	case i.UnitCost.IsNegative():
		return fieldError("unit_cost", "must not be negative")
	}
	return nil
}

// BelowMin reports whether the item needs reordering.
func (i *Item) BelowMin() bool {
	return i.CurrentStock < i.MinStock
}

// ListFilter adds the reorder flag to the common filter.
type ListFilter struct {
	domain.ListFilter
	BelowMin bool
}
