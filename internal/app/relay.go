package app

import (
	"context"
	"time"

	"confhub/pkg/logger"
)

// Relay delivers one batch of outbox messages.
type Relay interface {
	ProcessBatch(ctx context.Context) (int, error)
}

// RunRelay drains the outbox every interval until ctx is done.
// A full batch is followed immediately by another pass.
func RunRelay(ctx context.Context, relay Relay, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	l := log.WithComponent("outbox-relay")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				n, err := relay.ProcessBatch(ctx)
				if err != nil {
					if ctx.Err() == nil {
						l.Errorw("outbox batch failed", "error", err)
					}
					break
				}
				if n > 0 {
					l.Debugw("outbox batch delivered", "count", n)
				}
				if n < OutboxBatchSize {
					break
				}
			}
		}
	}
}
