// Package submissiontest provides in-memory collaborators for submission service tests.
package submissiontest

import (
	"context"
	"sync"
	"time"

	"confhub/internal/core/apperror"
	"confhub/internal/core/id"
	"confhub/internal/core/numerator"
	"confhub/internal/core/tx"
	"confhub/internal/domain"
	"confhub/internal/domain/audit"
	"confhub/internal/domain/notification"
	"confhub/internal/domain/submission"
)

// MemoryRepo is a map-backed submission.Repository.
type MemoryRepo[T submission.Record] struct {
	mu      sync.Mutex
	order   []id.ID
	rows    map[id.ID]T
	Updates []map[string]any
	Locked  []id.ID
}

// NewMemoryRepo creates an empty repository.
func NewMemoryRepo[T submission.Record]() *MemoryRepo[T] {
	return &MemoryRepo[T]{rows: make(map[id.ID]T)}
}

func (r *MemoryRepo[T]) Create(_ context.Context, rec T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[rec.GetID()] = rec
	r.order = append(r.order, rec.GetID())
	return nil
}

func (r *MemoryRepo[T]) GetByID(_ context.Context, entityID id.ID) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rows[entityID]
	if !ok {
		return rec, apperror.NewNotFound("row", entityID.String())
	}
	return rec, nil
}

func (r *MemoryRepo[T]) GetForUpdate(ctx context.Context, entityID id.ID) (T, error) {
	r.mu.Lock()
	r.Locked = append(r.Locked, entityID)
	r.mu.Unlock()
	return r.GetByID(ctx, entityID)
}

func (r *MemoryRepo[T]) Update(_ context.Context, entityID id.ID, columns map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[entityID]; !ok {
		return apperror.NewNotFound("row", entityID.String())
	}
	r.Updates = append(r.Updates, columns)
	return nil
}

func (r *MemoryRepo[T]) Delete(_ context.Context, entityID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[entityID]; !ok {
		return apperror.NewNotFound("row", entityID.String())
	}
	delete(r.rows, entityID)
	return nil
}

func (r *MemoryRepo[T]) List(_ context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]T, 0, len(r.rows))
	for _, rowID := range r.order {
		if rec, ok := r.rows[rowID]; ok {
			items = append(items, rec)
		}
	}
	return domain.ListResult[T]{
		Items:      items,
		TotalCount: int64(len(items)),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

// Len returns the number of stored rows.
func (r *MemoryRepo[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// MemoryAudit keeps audit entries in memory.
type MemoryAudit struct {
	mu      sync.Mutex
	Entries []audit.Entry
	Changes []map[string]any
}

func (a *MemoryAudit) Record(_ context.Context, entityType string, entityID id.ID, action audit.Action, changes map[string]any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Entries = append(a.Entries, audit.Entry{
		ID:         id.New(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Actor:      "test",
		CreatedAt:  time.Now().UTC(),
	})
	a.Changes = append(a.Changes, changes)
	return nil
}

func (a *MemoryAudit) History(_ context.Context, entityType string, entityID id.ID) ([]audit.Entry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []audit.Entry
	for _, e := range a.Entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

// RecordingFiles records removed paths.
type RecordingFiles struct {
	Removed []string
}

func (f *RecordingFiles) Remove(path string) error {
	f.Removed = append(f.Removed, path)
	return nil
}

// Harness bundles the collaborators of a submission service.
type Harness struct {
	Outbox    *notification.MemoryOutbox
	Audit     *MemoryAudit
	Files     *RecordingFiles
	Numerator *numerator.MockGenerator
}

// NewHarness creates fresh collaborators.
func NewHarness() *Harness {
	return &Harness{
		Outbox:    &notification.MemoryOutbox{},
		Audit:     &MemoryAudit{},
		Files:     &RecordingFiles{},
		Numerator: &numerator.MockGenerator{},
	}
}

// Config fills the shared fields of a service config.
func Config[T submission.Record](h *Harness, repo submission.Repository[T]) submission.Config[T] {
	return submission.Config[T]{
		Repo:      repo,
		TxManager: tx.Inline,
		Numerator: h.Numerator,
		Notifier:  notification.NewNotifier(h.Outbox, ""),
		Audit:     h.Audit,
		Files:     h.Files,
	}
}
