package stores_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"confhub/internal/core/apperror"
	"confhub/internal/core/id"
	"confhub/internal/domain"
	"confhub/internal/domain/stores/grn"
	"confhub/internal/infrastructure/storage/postgres"
)

const (
	grnTable     = "stores_grns"
	grnLineTable = "stores_grn_lines"
)

// GRNRepo persists goods received notes.
type GRNRepo struct {
	txManager  *postgres.TxManager
	bulk       *postgres.Bulk
	headerCols []string
	lineCols   []string
}

var _ grn.Repository = (*GRNRepo)(nil)

// NewGRNRepo creates a new GRN repository.
func NewGRNRepo(txManager *postgres.TxManager) *GRNRepo {
	return &GRNRepo{
		txManager:  txManager,
		bulk:       postgres.NewBulk(txManager),
		headerCols: postgres.ExtractDBColumns[grn.GRN](),
		lineCols:   postgres.ExtractDBColumns[grn.Line](),
	}
}

// Create inserts the header.
func (r *GRNRepo) Create(ctx context.Context, g *grn.GRN) error {
	sql, args, err := builder().
		Insert(grnTable).
		SetMap(postgres.Pick(postgres.StructToMap(g), r.headerCols)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.TranslateWriteError(fmt.Errorf("insert grn: %w", err), "grn", "grn_number", g.GRNNumber)
	}
	return nil
}

// SaveLines copies the lines in. Requires a transaction.
func (r *GRNRepo) SaveLines(ctx context.Context, grnID id.ID, lines []grn.Line) error {
	for i := range lines {
		lines[i].GRNID = grnID
	}
	if _, err := postgres.CopyStructs(ctx, r.bulk, grnLineTable, r.lineCols, lines); err != nil {
		return postgres.TranslateWriteError(err, "grn line", "", "")
	}
	return nil
}

// GetByID retrieves the header.
func (r *GRNRepo) GetByID(ctx context.Context, grnID id.ID) (*grn.GRN, error) {
	sql, args, err := builder().
		Select(r.headerCols...).
		From(grnTable).
		Where(squirrel.Eq{"id": grnID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	g := &grn.GRN{}
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), g, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("grn", grnID.String())
		}
		return nil, fmt.Errorf("get grn: %w", err)
	}
	return g, nil
}

// GetLines returns the lines in line order.
func (r *GRNRepo) GetLines(ctx context.Context, grnID id.ID) ([]grn.Line, error) {
	sql, args, err := builder().
		Select(r.lineCols...).
		From(grnLineTable).
		Where(squirrel.Eq{"grn_id": grnID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	lines := []grn.Line{}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get grn lines: %w", err)
	}
	return lines, nil
}

// List retrieves headers, newest received first.
func (r *GRNRepo) List(ctx context.Context, f grn.ListFilter) (domain.ListResult[*grn.GRN], error) {
	q := builder().Select(r.headerCols...).From(grnTable)
	q = searchAny(q, f.Search, "grn_number", "supplier_name", "order_reference", "delivery_note_number")
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"received_date": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"received_date": *f.To})
	}

	order, err := orderBy(f.OrderBy, "received_date DESC",
		"grn_number", "received_date", "supplier_name", "total_value", "created_at")
	if err != nil {
		return domain.ListResult[*grn.GRN]{}, err
	}
	return selectPage[*grn.GRN](ctx, r.txManager.GetQuerier(ctx), q, order, f.ListFilter)
}
