// Package numerator allocates reference numbers from the sys_sequences table.
package numerator

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	corenumerator "confhub/internal/core/numerator"
)

// Querier is the part of pgx the counter needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierProvider returns the querier bound to ctx, the active transaction when there is one.
type QuerierProvider func(ctx context.Context) Querier

// Service increments one sys_sequences row per series and period. The row
// lock taken by the upsert serializes concurrent submissions of a series
// until their transaction ends, so numbers are gapless.
type Service struct {
	querier QuerierProvider
}

var _ corenumerator.Generator = (*Service)(nil)

// New binds the service to a fixed querier.
func New(q Querier) *Service {
	return NewWithProvider(func(context.Context) Querier { return q })
}

func NewWithProvider(provider QuerierProvider) *Service {
	return &Service{querier: provider}
}

// Next returns the next number of cfg's series for the period containing at.
func (s *Service) Next(ctx context.Context, cfg corenumerator.Config, at time.Time) (string, error) {
	key := seriesKey(cfg, at)

	var n int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, key).Scan(&n)
	if err != nil {
		return "", fmt.Errorf("next %s: %w", key, err)
	}
	return format(cfg, at, n), nil
}

func seriesKey(cfg corenumerator.Config, at time.Time) string {
	switch cfg.ResetPeriod {
	case corenumerator.ResetMonth:
		return cfg.Prefix + "_" + at.Format("2006_01")
	case corenumerator.ResetYear:
		return cfg.Prefix + "_" + at.Format("2006")
	default:
		return cfg.Prefix
	}
}

func format(cfg corenumerator.Config, at time.Time, n int64) string {
	width := cfg.PadWidth
	if width <= 0 {
		width = 5
	}
	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, at.Format("2006"), width, n)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, width, n)
}
