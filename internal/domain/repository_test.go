package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"confhub/internal/domain/filter"
)

func TestListFilter_Normalize(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", 0, 0, 50, 0},
		{"clamped", 10_000, 5, 500, 5},
		{"negative offset", 20, -3, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ListFilter{Limit: tt.limit, Offset: tt.offset}
			f.Normalize()
			assert.Equal(t, tt.wantLimit, f.Limit)
			assert.Equal(t, tt.wantOffset, f.Offset)
		})
	}
}

func TestListFilter_WhereSkipsEmpty(t *testing.T) {
	f := DefaultListFilter()
	f.Where("status", "")
	f.Where("status", "approved")

	assert.Equal(t, []filter.Item{filter.Eq("status", "approved")}, f.Filters)
}
