package submission_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"confhub/internal/domain/submission"
	"confhub/internal/domain/submission/preconference"
	"confhub/internal/infrastructure/storage/postgres"
)

// PreconferenceRepo persists pre-conference meetings.
type PreconferenceRepo struct {
	*BaseRepo[*preconference.Meeting]
}

var _ preconference.Repository = (*PreconferenceRepo)(nil)

// NewPreconferenceRepo creates a new pre-conference repository.
func NewPreconferenceRepo(txManager *postgres.TxManager) *PreconferenceRepo {
	return &PreconferenceRepo{
		BaseRepo: NewBaseRepo(
			txManager,
			"preconference_meetings",
			"pre-conference meeting",
			postgres.ExtractDBColumns[preconference.Meeting](),
			[]string{"session_title", "organizer_name", "organizer_email", "organization", "reference"},
			func() *preconference.Meeting { return &preconference.Meeting{} },
		),
	}
}

// LockOrganizer serializes intake per organizer e-mail until the transaction ends.
func (r *PreconferenceRepo) LockOrganizer(ctx context.Context, email string) error {
	if r.txManager.GetTx(ctx) == nil {
		return fmt.Errorf("LockOrganizer requires transaction context")
	}
	_, err := r.Querier(ctx).Exec(ctx,
		"SELECT pg_advisory_xact_lock(hashtext($1))", normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("advisory lock: %w", err)
	}
	return nil
}

// HasActiveBooking reports a pending or approved meeting for the organizer.
func (r *PreconferenceRepo) HasActiveBooking(ctx context.Context, email string) (bool, error) {
	sql, args, err := r.Builder().
		Select("1").
		From(r.tableName).
		Where(squirrel.Expr("lower(organizer_email) = ?", normalizeEmail(email))).
		Where(squirrel.Eq{"approval_status": []submission.Status{submission.StatusPending, submission.StatusApproved}}).
		Prefix("SELECT EXISTS (").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists bool
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active booking: %w", err)
	}
	return exists, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
