package numerator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "confhub/internal/core/numerator"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates sys_sequences: every call increments the key's counter.
type mockQuerier struct {
	mu     sync.Mutex
	values map[string]int64
	calls  int
	err    error
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return &mockRow{err: m.err}
	}
	if m.values == nil {
		m.values = make(map[string]int64)
	}
	key := args[0].(string)
	m.values[key]++
	return &mockRow{val: m.values[key]}
}

var period = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

func TestNext(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig(corenumerator.PrefixGRN)

	num, err := svc.Next(ctx, cfg, period)
	require.NoError(t, err)
	assert.Equal(t, "GRN-2026-00001", num)

	num, err = svc.Next(ctx, cfg, period)
	require.NoError(t, err)
	assert.Equal(t, "GRN-2026-00002", num)

	other, err := svc.Next(ctx, corenumerator.DefaultConfig(corenumerator.PrefixIssuance), period)
	require.NoError(t, err)
	assert.Equal(t, "SIV-2026-00001", other)
	assert.Equal(t, 3, q.calls)
}

func TestNext_NewYearRestarts(t *testing.T) {
	svc := New(&mockQuerier{})
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig(corenumerator.PrefixRegistration)

	_, err := svc.Next(ctx, cfg, period)
	require.NoError(t, err)
	num, err := svc.Next(ctx, cfg, period.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "REG-2027-00001", num)
}

func TestNext_UsesProvidedQuerier(t *testing.T) {
	txQ, poolQ := &mockQuerier{}, &mockQuerier{}
	type txKey struct{}
	svc := NewWithProvider(func(ctx context.Context) Querier {
		if ctx.Value(txKey{}) != nil {
			return txQ
		}
		return poolQ
	})

	_, err := svc.Next(context.WithValue(context.Background(), txKey{}, true), corenumerator.DefaultConfig("ABS"), period)
	require.NoError(t, err)
	assert.Equal(t, 1, txQ.calls)
	assert.Equal(t, 0, poolQ.calls)
}

func TestNext_PropagatesError(t *testing.T) {
	svc := New(&mockQuerier{err: errors.New("db down")})

	_, err := svc.Next(context.Background(), corenumerator.DefaultConfig("ABS"), period)
	assert.ErrorContains(t, err, "db down")
}

func TestFormat(t *testing.T) {
	cfg := corenumerator.Config{Prefix: "PCM", PadWidth: 3}
	assert.Equal(t, "PCM-007", format(cfg, period, 7))

	cfg.IncludeYear = true
	assert.Equal(t, "PCM-2026-007", format(cfg, period, 7))
}

func TestSeriesKey(t *testing.T) {
	assert.Equal(t, "GRN_2026", seriesKey(corenumerator.Config{Prefix: "GRN", ResetPeriod: corenumerator.ResetYear}, period))
	assert.Equal(t, "GRN_2026_03", seriesKey(corenumerator.Config{Prefix: "GRN", ResetPeriod: corenumerator.ResetMonth}, period))
	assert.Equal(t, "GRN", seriesKey(corenumerator.Config{Prefix: "GRN"}, period))
}
