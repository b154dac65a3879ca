package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"confhub/internal/core/id"
	"confhub/internal/domain/notification"
	"confhub/pkg/logger"
)

// OutboxStatus represents the state of an outbox message.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// OutboxMaxRetries is the attempt count after which a message is marked failed.
const OutboxMaxRetries = 5

// OutboxMessage represents a message in the transactional outbox.
type OutboxMessage struct {
	ID            id.ID        `db:"id"`
	AggregateType string       `db:"aggregate_type"` // notification kind, e.g. "registration"
	AggregateID   *id.ID       `db:"aggregate_id"`
	EventType     string       `db:"event_type"` // notification event, e.g. "approved"
	Payload       []byte       `db:"payload"`
	Status        OutboxStatus `db:"status"`
	RetryCount    int          `db:"retry_count"`
	LastError     *string      `db:"last_error"`
	NextRetryAt   *time.Time   `db:"next_retry_at"`
	CreatedAt     time.Time    `db:"created_at"`
	PublishedAt   *time.Time   `db:"published_at"`
}

// Message decodes the notification payload.
func (m *OutboxMessage) Message() (notification.Message, error) {
	var msg notification.Message
	if err := json.Unmarshal(m.Payload, &msg); err != nil {
		return msg, fmt.Errorf("decode outbox payload %s: %w", m.ID, err)
	}
	return msg, nil
}

// OutboxPublisher writes notifications to the outbox table.
type OutboxPublisher struct {
	txManager *TxManager
}

var _ notification.Outbox = (*OutboxPublisher)(nil)

// NewOutboxPublisher creates a new outbox publisher.
func NewOutboxPublisher(txManager *TxManager) *OutboxPublisher {
	return &OutboxPublisher{txManager: txManager}
}

// Enqueue writes msg within the current transaction.
// MUST be called inside a transaction context.
func (p *OutboxPublisher) Enqueue(ctx context.Context, msg notification.Message) error {
	tx := p.txManager.GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("outbox enqueue requires transaction context")
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	var aggregateID *id.ID
	if msg.EntityID != "" {
		if parsed, err := id.Parse(msg.EntityID); err == nil {
			aggregateID = &parsed
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO sys_outbox (id, aggregate_type, aggregate_id, event_type, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id.New(), string(msg.Kind), aggregateID, string(msg.Event), payload, OutboxStatusPending, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}

	return nil
}

// OutboxHandler delivers one notification.
type OutboxHandler interface {
	Handle(ctx context.Context, msg notification.Message) error
}

// OutboxRelay reads and delivers messages from the outbox.
type OutboxRelay struct {
	txManager *TxManager
	batchSize int
	handler   OutboxHandler
}

// NewOutboxRelay creates a new outbox relay.
func NewOutboxRelay(txManager *TxManager, batchSize int, handler OutboxHandler) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &OutboxRelay{
		txManager: txManager,
		batchSize: batchSize,
		handler:   handler,
	}
}

// ProcessBatch claims due pending messages and delivers them in one transaction.
// Rows claimed by another relay are skipped. Returns the number delivered.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (int, error) {
	processed := 0

	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		q := r.txManager.GetQuerier(ctx)

		var messages []*OutboxMessage
		err := pgxscan.Select(ctx, q, &messages, `
			SELECT id, aggregate_type, aggregate_id, event_type, payload, status,
			       retry_count, last_error, next_retry_at, created_at, published_at
			FROM sys_outbox
			WHERE status = $1
			  AND (next_retry_at IS NULL OR next_retry_at <= NOW())
			ORDER BY created_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		`, OutboxStatusPending, r.batchSize)
		if err != nil {
			return fmt.Errorf("fetch outbox messages: %w", err)
		}

		for _, msg := range messages {
			ok, err := r.processMessage(ctx, msg)
			if err != nil {
				return err
			}
			if ok {
				processed++
			}
		}
		return nil
	})

	return processed, err
}

// processMessage delivers one message and records the outcome.
// The returned error is a storage failure; delivery failures only reschedule.
func (r *OutboxRelay) processMessage(ctx context.Context, msg *OutboxMessage) (bool, error) {
	q := r.txManager.GetQuerier(ctx)

	deliveryErr := r.deliver(ctx, msg)
	if deliveryErr == nil {
		_, err := q.Exec(ctx, `
			UPDATE sys_outbox
			SET status = $1, published_at = $2
			WHERE id = $3
		`, OutboxStatusPublished, time.Now().UTC(), msg.ID)
		if err != nil {
			return false, fmt.Errorf("mark outbox message published: %w", err)
		}
		return true, nil
	}

	status := nextOutboxStatus(msg.RetryCount)
	logger.Warn(ctx, "outbox delivery failed",
		"id", msg.ID,
		"kind", msg.AggregateType,
		"event", msg.EventType,
		"retry", msg.RetryCount+1,
		"status", status,
		"error", deliveryErr)

	_, err := q.Exec(ctx, `
		UPDATE sys_outbox
		SET retry_count = retry_count + 1,
		    last_error = $1,
		    next_retry_at = $2,
		    status = $3
		WHERE id = $4
	`, deliveryErr.Error(), time.Now().UTC().Add(RetryDelay(msg.RetryCount)), status, msg.ID)
	if err != nil {
		return false, fmt.Errorf("update failed outbox message: %w", err)
	}
	return false, nil
}

func (r *OutboxRelay) deliver(ctx context.Context, msg *OutboxMessage) error {
	payload, err := msg.Message()
	if err != nil {
		return err
	}
	return r.handler.Handle(ctx, payload)
}

// RetryDelay is the linear backoff before the next attempt: (retries+1) minutes.
func RetryDelay(retryCount int) time.Duration {
	return time.Duration(retryCount+1) * time.Minute
}

// nextOutboxStatus is the status after a failed attempt.
func nextOutboxStatus(retryCount int) OutboxStatus {
	if retryCount+1 >= OutboxMaxRetries {
		return OutboxStatusFailed
	}
	return OutboxStatusPending
}

// PrunePublished deletes published messages older than olderThan.
func (r *OutboxRelay) PrunePublished(ctx context.Context, olderThan time.Duration) (int64, error) {
	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, `
		DELETE FROM sys_outbox
		WHERE status = $1 AND published_at < $2
	`, OutboxStatusPublished, time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("prune outbox: %w", err)
	}
	return result.RowsAffected(), nil
}

// OutboxBacklog counts undelivered e-mails.
type OutboxBacklog struct {
	Pending int64 `db:"pending" json:"pending"`
	Failed  int64 `db:"failed" json:"failed"`
}

// Backlog counts pending and permanently failed messages.
func (r *OutboxRelay) Backlog(ctx context.Context) (OutboxBacklog, error) {
	var b OutboxBacklog
	err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &b, `
		SELECT COUNT(*) FILTER (WHERE status = $1) AS pending,
		       COUNT(*) FILTER (WHERE status = $2) AS failed
		FROM sys_outbox
		WHERE status IN ($1, $2)
	`, OutboxStatusPending, OutboxStatusFailed)
	if err != nil {
		return b, fmt.Errorf("outbox backlog: %w", err)
	}
	return b, nil
}
