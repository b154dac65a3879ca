// Package domain provides core business logic interfaces and types.
package domain

import (
	"confhub/internal/domain/filter"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search performs ILIKE matching on the repository's searchable columns
	Search string

	// Filters are column conditions, e.g. status = approved
	Filters []filter.Item

	// OrderBy specifies sorting (e.g., "full_name", "-created_at")
	OrderBy string

	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   DefaultListLimit,
		OrderBy: "-created_at",
	}
}

// Normalize clamps paging to the allowed window.
func (f *ListFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// Where appends an equality filter when value is not empty.
func (f *ListFilter) Where(field, value string) {
	if value != "" {
		f.Filters = append(f.Filters, filter.Eq(field, value))
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}
