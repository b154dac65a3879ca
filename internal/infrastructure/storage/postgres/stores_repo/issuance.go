package stores_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"confhub/internal/core/apperror"
	"confhub/internal/core/id"
	"confhub/internal/domain"
	"confhub/internal/domain/stores/issuance"
	"confhub/internal/infrastructure/storage/postgres"
)

const (
	issuanceTable     = "stores_issuances"
	issuanceLineTable = "stores_issuance_lines"
)

// IssuanceRepo persists issuance vouchers.
type IssuanceRepo struct {
	txManager  *postgres.TxManager
	bulk       *postgres.Bulk
	headerCols []string
	lineCols   []string
}

var _ issuance.Repository = (*IssuanceRepo)(nil)

// NewIssuanceRepo creates a new issuance repository.
func NewIssuanceRepo(txManager *postgres.TxManager) *IssuanceRepo {
	return &IssuanceRepo{
		txManager:  txManager,
		bulk:       postgres.NewBulk(txManager),
		headerCols: postgres.ExtractDBColumns[issuance.Issuance](),
		lineCols:   postgres.ExtractDBColumns[issuance.Line](),
	}
}

// Create inserts the header.
func (r *IssuanceRepo) Create(ctx context.Context, v *issuance.Issuance) error {
	sql, args, err := builder().
		Insert(issuanceTable).
		SetMap(postgres.Pick(postgres.StructToMap(v), r.headerCols)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.TranslateWriteError(fmt.Errorf("insert issuance: %w", err), "stores issuance", "voucher_number", v.VoucherNumber)
	}
	return nil
}

// SaveLines copies the lines in. Requires a transaction.
func (r *IssuanceRepo) SaveLines(ctx context.Context, issuanceID id.ID, lines []issuance.Line) error {
	for i := range lines {
		lines[i].IssuanceID = issuanceID
	}
	if _, err := postgres.CopyStructs(ctx, r.bulk, issuanceLineTable, r.lineCols, lines); err != nil {
		return postgres.TranslateWriteError(err, "stores issuance line", "", "")
	}
	return nil
}

// GetByID retrieves the header.
func (r *IssuanceRepo) GetByID(ctx context.Context, issuanceID id.ID) (*issuance.Issuance, error) {
	return r.get(ctx, issuanceID, "")
}

// GetForUpdate retrieves the header with a row lock.
func (r *IssuanceRepo) GetForUpdate(ctx context.Context, issuanceID id.ID) (*issuance.Issuance, error) {
	return r.get(ctx, issuanceID, "FOR UPDATE")
}

func (r *IssuanceRepo) get(ctx context.Context, issuanceID id.ID, suffix string) (*issuance.Issuance, error) {
	q := builder().
		Select(r.headerCols...).
		From(issuanceTable).
		Where(squirrel.Eq{"id": issuanceID})
	if suffix != "" {
		q = q.Suffix(suffix)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	v := &issuance.Issuance{}
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), v, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stores issuance", issuanceID.String())
		}
		return nil, fmt.Errorf("get issuance: %w", err)
	}
	return v, nil
}

// GetLines returns the lines in line order.
func (r *IssuanceRepo) GetLines(ctx context.Context, issuanceID id.ID) ([]issuance.Line, error) {
	sql, args, err := builder().
		Select(r.lineCols...).
		From(issuanceLineTable).
		Where(squirrel.Eq{"issuance_id": issuanceID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	lines := []issuance.Line{}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get issuance lines: %w", err)
	}
	return lines, nil
}

// Update writes the header status columns and every line's quantities in one round-trip.
// Requires a transaction.
func (r *IssuanceRepo) Update(ctx context.Context, v *issuance.Issuance) error {
	stmts := make([]squirrel.Sqlizer, 0, len(v.Lines)+1)
	stmts = append(stmts, builder().
		Update(issuanceTable).
		SetMap(map[string]any{
			"approval_status": v.ApprovalStatus,
			"approved_by":     v.ApprovedBy,
			"issued_by":       v.IssuedBy,
			"issued_at":       v.IssuedAt,
			"updated_at":      v.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": v.ID}))
	for _, l := range v.Lines {
		stmts = append(stmts, builder().
			Update(issuanceLineTable).
			Set("quantity_approved", l.QuantityApproved).
			Set("quantity_issued", l.QuantityIssued).
			Where(squirrel.Eq{"id": l.ID, "issuance_id": v.ID}))
	}
	if err := r.bulk.Exec(ctx, stmts...); err != nil {
		return fmt.Errorf("update issuance: %w", err)
	}
	return nil
}

// List retrieves headers, newest request first.
func (r *IssuanceRepo) List(ctx context.Context, f issuance.ListFilter) (domain.ListResult[*issuance.Issuance], error) {
	q := builder().Select(r.headerCols...).From(issuanceTable)
	q = searchAny(q, f.Search, "voucher_number", "department", "purpose", "requested_by")
	if f.Status != "" {
		q = q.Where(squirrel.Eq{"approval_status": f.Status})
	}

	order, err := orderBy(f.OrderBy, "request_date DESC",
		"voucher_number", "request_date", "department", "approval_status", "created_at")
	if err != nil {
		return domain.ListResult[*issuance.Issuance]{}, err
	}
	return selectPage[*issuance.Issuance](ctx, r.txManager.GetQuerier(ctx), q, order, f.ListFilter)
}
