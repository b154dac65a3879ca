package stores_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"confhub/internal/core/id"
	"confhub/internal/domain/stores/ledger"
	"confhub/internal/infrastructure/storage/postgres"
)

const ledgerTable = "stores_ledger_entries"

// replayOrder is the order balances are replayed in.
const replayOrder = "transaction_date, created_at, id"

// LedgerRepo persists ledger entries.
type LedgerRepo struct {
	txManager  *postgres.TxManager
	bulk       *postgres.Bulk
	selectCols []string
}

var _ ledger.Repository = (*LedgerRepo)(nil)

// NewLedgerRepo creates a new ledger repository.
func NewLedgerRepo(txManager *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txManager:  txManager,
		bulk:       postgres.NewBulk(txManager),
		selectCols: postgres.ExtractDBColumns[ledger.Entry](),
	}
}

// Append inserts one entry.
func (r *LedgerRepo) Append(ctx context.Context, e *ledger.Entry) error {
	sql, args, err := builder().
		Insert(ledgerTable).
		SetMap(postgres.StructToMap(e)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.TranslateWriteError(fmt.Errorf("insert ledger entry: %w", err), "ledger entry", "", "")
	}
	return nil
}

// ListByItem returns the item's entries in replay order.
func (r *LedgerRepo) ListByItem(ctx context.Context, itemID id.ID) ([]ledger.Entry, error) {
	sql, args, err := builder().
		Select(r.selectCols...).
		From(ledgerTable).
		Where("item_id = ?", itemID).
		OrderBy(replayOrder).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	entries := []ledger.Entry{}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &entries, sql, args...); err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return entries, nil
}

// Latest returns the last entry in replay order, or nil.
func (r *LedgerRepo) Latest(ctx context.Context, itemID id.ID) (*ledger.Entry, error) {
	sql, args, err := builder().
		Select(r.selectCols...).
		From(ledgerTable).
		Where("item_id = ?", itemID).
		OrderBy("transaction_date DESC", "created_at DESC", "id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var e ledger.Entry
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest ledger entry: %w", err)
	}
	return &e, nil
}

// UpdateBalances rewrites opening and closing balances in one round-trip.
func (r *LedgerRepo) UpdateBalances(ctx context.Context, entries []ledger.Entry) error {
	stmts := make([]squirrel.Sqlizer, len(entries))
	for i, e := range entries {
		stmts[i] = builder().
			Update(ledgerTable).
			Set("opening_stock", e.OpeningStock).
			Set("closing_balance", e.ClosingBalance).
			Where(squirrel.Eq{"id": e.ID})
	}
	if err := r.bulk.Exec(ctx, stmts...); err != nil {
		return fmt.Errorf("update ledger balances: %w", err)
	}
	return nil
}
