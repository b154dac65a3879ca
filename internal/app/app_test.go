package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"confhub/pkg/logger"
)

type countingRelay struct {
	mu      sync.Mutex
	results []int
	calls   int
	cancel  context.CancelFunc
}

func (r *countingRelay) ProcessBatch(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if len(r.results) == 0 {
		r.cancel()
		return 0, nil
	}
	n := r.results[0]
	r.results = r.results[1:]
	return n, nil
}

func TestRunRelay_DrainsFullBatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// full, full, partial: three passes in the first tick, then the empty pass cancels
	relay := &countingRelay{results: []int{OutboxBatchSize, OutboxBatchSize, 3}, cancel: cancel}

	done := make(chan struct{})
	go func() {
		RunRelay(ctx, relay, time.Millisecond, logger.Default())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not stop")
	}
	relay.mu.Lock()
	defer relay.mu.Unlock()
	assert.Empty(t, relay.results)
	assert.GreaterOrEqual(t, relay.calls, 4)
}

type stubSweeper struct{ err error }

func (s stubSweeper) RecalculateAll(context.Context) (int, int, error) { return 3, 1, s.err }

type stubPruner struct{ olderThan time.Duration }

func (p *stubPruner) PrunePublished(_ context.Context, olderThan time.Duration) (int64, error) {
	p.olderThan = olderThan
	return 7, nil
}

func TestJobs(t *testing.T) {
	pruner := &stubPruner{}
	jobs := NewJobs(stubSweeper{}, pruner, logger.Default())

	jobs.LedgerSweep(context.Background())
	jobs.OutboxPrune(context.Background())
	assert.Equal(t, OutboxRetention, pruner.olderThan)

	// errors are logged, not raised
	NewJobs(stubSweeper{err: errors.New("item 2 failed")}, pruner, logger.Default()).LedgerSweep(context.Background())
}
