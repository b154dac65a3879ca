// Package dto holds the request and response shapes of the HTTP API and
// their conversion to domain values.
package dto

import (
	"confhub/internal/domain"
)

// ListQuery is the paging and search part of every admin list URL:
// ?search=&orderBy=-created_at&limit=50&offset=0
type ListQuery struct {
	Search  string `form:"search"`
	OrderBy string `form:"orderBy"`
	Limit   int    `form:"limit" binding:"omitempty,min=0,max=500"`
	Offset  int    `form:"offset" binding:"omitempty,min=0"`
}

// ToListFilter leaves OrderBy empty when not given so each repository
// applies its own default order.
func (q ListQuery) ToListFilter() domain.ListFilter {
	f := domain.ListFilter{Search: q.Search, OrderBy: q.OrderBy, Limit: q.Limit, Offset: q.Offset}
	f.Normalize()
	return f
}

type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// FromListResult never returns a null items array.
func FromListResult[T any](r domain.ListResult[T]) ListResponse[T] {
	out := ListResponse[T]{Items: r.Items, TotalCount: r.TotalCount, Limit: r.Limit, Offset: r.Offset}
	if out.Items == nil {
		out.Items = []T{}
	}
	return out
}
