package submission

import (
	"context"
	"fmt"
	"sort"
	"time"

	"confhub/internal/core/apperror"
	"confhub/internal/core/id"
	"confhub/internal/core/numerator"
	"confhub/internal/core/tx"
	"confhub/internal/domain"
	"confhub/internal/domain/audit"
	"confhub/internal/domain/notification"
	"confhub/pkg/logger"
)

// Config wires a Service.
type Config[T Record] struct {
	Kind       notification.Kind
	EntityName string
	Prefix     string

	// Statuses is the allowed target set for SetStatus. Nil disables it.
	Statuses []Status

	Repo      Repository[T]
	TxManager tx.Manager
	Numerator numerator.Generator
	Notifier  *notification.Notifier
	Audit     audit.Recorder
	Files     FileRemover
}

// Service implements intake and review for one submission type.
// Entity packages embed it and add their own rules.
type Service[T Record] struct {
	cfg Config[T]
	now func() time.Time
}

// NewService creates a submission service.
func NewService[T Record](cfg Config[T]) *Service[T] {
	if cfg.Audit == nil {
		cfg.Audit = audit.Discard
	}
	return &Service[T]{
		cfg: cfg,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Mutation describes the columns a review action changed.
type Mutation struct {
	Old    map[string]any
	New    map[string]any
	Events []notification.Event
}

// Set records one column change.
func (m *Mutation) Set(column string, before, after any) {
	if m.Old == nil {
		m.Old = make(map[string]any)
		m.New = make(map[string]any)
	}
	m.Old[column] = before
	m.New[column] = after
}

// Changed reports whether anything differs.
func (m Mutation) Changed() bool { return len(m.New) > 0 }

func (s *Service[T]) normalizeValidationErr(err error) error {
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

// Create validates rec, numbers it, stores it and enqueues the confirmation e-mail in one transaction.
// before runs first inside the transaction; it may reject the submission.
func (s *Service[T]) Create(ctx context.Context, rec T, before func(ctx context.Context) error) error {
	if err := rec.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	err := s.cfg.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if before != nil {
			if err := before(ctx); err != nil {
				return err
			}
		}

		number, err := s.cfg.Numerator.Next(ctx, numerator.DefaultConfig(s.cfg.Prefix), s.now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		rec.SetReference(number)

		if err := s.cfg.Repo.Create(ctx, rec); err != nil {
			return fmt.Errorf("create %s: %w", s.cfg.EntityName, err)
		}

		return s.cfg.Notifier.Received(ctx, s.subject(rec))
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, s.cfg.EntityName+" created",
		"id", rec.GetID(),
		"reference", rec.GetReference())
	return nil
}

// GetByID retrieves one record.
func (s *Service[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	rec, err := s.cfg.Repo.GetByID(ctx, entityID)
	if err != nil && apperror.IsNotFound(err) {
		return rec, apperror.NewNotFound(s.cfg.EntityName, entityID.String())
	}
	return rec, err
}

// List retrieves records with filtering.
func (s *Service[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	filter.Normalize()
	return s.cfg.Repo.List(ctx, filter)
}

// Change locks the row, applies mutate and persists what it changed together
// with an audit entry and the resulting e-mails. An empty mutation is a no-op.
func (s *Service[T]) Change(ctx context.Context, entityID id.ID, mutate func(rec T) (Mutation, error)) (T, error) {
	var (
		result T
		change Mutation
	)

	err := s.cfg.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		rec, err := s.cfg.Repo.GetForUpdate(ctx, entityID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound(s.cfg.EntityName, entityID.String())
			}
			return err
		}

		change, err = mutate(rec)
		if err != nil {
			return err
		}
		result = rec
		if !change.Changed() {
			return nil
		}

		rec.Touch()
		if err := s.cfg.Repo.Update(ctx, entityID, change.New); err != nil {
			return fmt.Errorf("update %s: %w", s.cfg.EntityName, err)
		}
		if err := s.cfg.Audit.Record(ctx, s.cfg.EntityName, entityID, audit.ActionStatusChange, audit.Diff(change.Old, change.New)); err != nil {
			return fmt.Errorf("audit %s: %w", s.cfg.EntityName, err)
		}
		for _, event := range change.Events {
			if err := s.cfg.Notifier.StatusChanged(ctx, s.subject(rec), event); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	if change.Changed() {
		logger.Info(ctx, "status changed",
			"entity", s.cfg.EntityName,
			"id", entityID,
			"old", change.Old,
			"new", change.New)
	}
	return result, nil
}

// SetStatus moves a single-axis record to target. Setting the current status succeeds without effect.
func (s *Service[T]) SetStatus(ctx context.Context, entityID id.ID, target Status) (T, error) {
	if s.cfg.Statuses == nil {
		var zero T
		return zero, apperror.NewInternal(fmt.Errorf("%s has no single status axis", s.cfg.EntityName))
	}
	if !ValidStatus(s.cfg.Statuses, target) {
		var zero T
		return zero, apperror.NewValidation(fmt.Sprintf("invalid status %q", target)).
			WithDetail("allowed", s.cfg.Statuses)
	}

	return s.Change(ctx, entityID, func(rec T) (Mutation, error) {
		var m Mutation
		r, ok := any(rec).(Reviewable)
		if !ok {
			return m, apperror.NewInternal(fmt.Errorf("%T is not reviewable", rec))
		}
		current := r.GetStatus()
		if current == target {
			return m, nil
		}
		m.Set("status", current, target)
		r.SetStatus(target)
		if event, ok := StatusEvent(target); ok {
			m.Events = append(m.Events, event)
		}
		return m, nil
	})
}

// Delete removes the row with an audit entry, then its files once the transaction has committed.
func (s *Service[T]) Delete(ctx context.Context, entityID id.ID) error {
	var docs map[string]string

	err := s.cfg.TxManager.RunInTransaction(ctx, func(ctx context.Context) error {
		rec, err := s.cfg.Repo.GetForUpdate(ctx, entityID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound(s.cfg.EntityName, entityID.String())
			}
			return err
		}
		docs = rec.Documents()

		if err := s.cfg.Repo.Delete(ctx, entityID); err != nil {
			return fmt.Errorf("delete %s: %w", s.cfg.EntityName, err)
		}
		return s.cfg.Audit.Record(ctx, s.cfg.EntityName, entityID, audit.ActionDelete,
			map[string]any{"old": rec})
	})
	if err != nil {
		return err
	}

	if s.cfg.Files != nil {
		for _, path := range docs {
			if err := s.cfg.Files.Remove(path); err != nil {
				logger.Warn(ctx, "failed to remove upload", "path", path, "error", err)
			}
		}
	}

	logger.Info(ctx, s.cfg.EntityName+" deleted", "id", entityID)
	return nil
}

// History returns the audit trail of one record.
func (s *Service[T]) History(ctx context.Context, entityID id.ID) ([]audit.Entry, error) {
	return s.cfg.Audit.History(ctx, s.cfg.EntityName, entityID)
}

// EntityName returns the audit and error name of the entity.
func (s *Service[T]) EntityName() string { return s.cfg.EntityName }

// Kind returns the notification kind.
func (s *Service[T]) Kind() notification.Kind { return s.cfg.Kind }

func (s *Service[T]) subject(rec T) notification.Subject {
	docs := rec.Documents()
	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)

	subj := notification.Subject{
		Kind:      s.cfg.Kind,
		EntityID:  rec.GetID(),
		Reference: rec.GetReference(),
		Recipient: rec.Recipient(),
		Documents: names,
	}
	if d, ok := any(rec).(interface{ NotificationData() map[string]string }); ok {
		subj.Data = d.NotificationData()
	}
	return subj
}
