package app

import (
	"context"
	"time"

	"confhub/pkg/logger"
)

// OutboxRetention is how long published e-mails are kept.
const OutboxRetention = 30 * 24 * time.Hour

// LedgerSweeper recalculates every item's ledger.
type LedgerSweeper interface {
	RecalculateAll(ctx context.Context) (items, updated int, err error)
}

// OutboxPruner deletes old published messages.
type OutboxPruner interface {
	PrunePublished(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Jobs are the scheduled maintenance tasks of the worker.
type Jobs struct {
	ledger LedgerSweeper
	outbox OutboxPruner
	log    *logger.Logger
}

// NewJobs creates the job set.
func NewJobs(ledger LedgerSweeper, outbox OutboxPruner, log *logger.Logger) *Jobs {
	return &Jobs{ledger: ledger, outbox: outbox, log: log.WithComponent("jobs")}
}

// LedgerSweep replays every item ledger and logs how many rows moved.
func (j *Jobs) LedgerSweep(ctx context.Context) {
	start := time.Now()
	items, updated, err := j.ledger.RecalculateAll(ctx)
	if err != nil {
		j.log.Errorw("ledger sweep finished with errors",
			"items", items, "updated", updated, "error", err)
		return
	}
	j.log.Infow("ledger sweep finished",
		"items", items,
		"updated", updated,
		"duration_ms", time.Since(start).Milliseconds())
}

// OutboxPrune removes published e-mails past retention.
func (j *Jobs) OutboxPrune(ctx context.Context) {
	n, err := j.outbox.PrunePublished(ctx, OutboxRetention)
	if err != nil {
		j.log.Errorw("outbox prune failed", "error", err)
		return
	}
	j.log.Infow("outbox pruned", "deleted", n)
}
