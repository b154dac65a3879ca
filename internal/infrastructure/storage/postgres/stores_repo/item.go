package stores_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"confhub/internal/core/apperror"
	"confhub/internal/core/id"
	"confhub/internal/core/types"
	"confhub/internal/domain"
	"confhub/internal/domain/stores/item"
	"confhub/internal/domain/stores/ledger"
	"confhub/internal/infrastructure/storage/postgres"
)

const itemsTable = "stores_items"

// ItemRepo persists stores items and owns their current_stock column.
type ItemRepo struct {
	txManager  *postgres.TxManager
	selectCols []string
}

var (
	_ item.Repository   = (*ItemRepo)(nil)
	_ ledger.StockStore = (*ItemRepo)(nil)
)

// NewItemRepo creates a new item repository.
func NewItemRepo(txManager *postgres.TxManager) *ItemRepo {
	return &ItemRepo{
		txManager:  txManager,
		selectCols: postgres.ExtractDBColumns[item.Item](),
	}
}

// Create inserts an item; a duplicate code is a 409.
func (r *ItemRepo) Create(ctx context.Context, it *item.Item) error {
	sql, args, err := builder().
		Insert(itemsTable).
		SetMap(postgres.Pick(postgres.StructToMap(it), r.selectCols)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.TranslateWriteError(fmt.Errorf("insert item: %w", err), "stores item", "code", it.Code)
	}
	return nil
}

// GetByID retrieves an item.
func (r *ItemRepo) GetByID(ctx context.Context, itemID id.ID) (*item.Item, error) {
	sql, args, err := builder().
		Select(r.selectCols...).
		From(itemsTable).
		Where(squirrel.Eq{"id": itemID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	it := &item.Item{}
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), it, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stores item", itemID.String())
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// Update writes the descriptive columns.
func (r *ItemRepo) Update(ctx context.Context, it *item.Item) error {
	sql, args, err := builder().
		Update(itemsTable).
		SetMap(map[string]any{
			"code":          it.Code,
			"description":   it.Description,
			"unit_of_issue": it.UnitOfIssue,
			"min_stock":     it.MinStock,
			"max_stock":     it.MaxStock,
			"unit_cost":     it.UnitCost,
			"updated_at":    it.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": it.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.TranslateWriteError(fmt.Errorf("update item: %w", err), "stores item", "code", it.Code)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("stores item", it.ID.String())
	}
	return nil
}

// Delete removes an item. Referenced items fail with a conflict.
func (r *ItemRepo) Delete(ctx context.Context, itemID id.ID) error {
	result, err := r.txManager.GetQuerier(ctx).Exec(ctx,
		"DELETE FROM "+itemsTable+" WHERE id = $1", itemID)
	if err != nil {
		return postgres.TranslateWriteError(fmt.Errorf("delete item: %w", err), "stores item", "", "")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("stores item", itemID.String())
	}
	return nil
}

// List retrieves items.
func (r *ItemRepo) List(ctx context.Context, f item.ListFilter) (domain.ListResult[*item.Item], error) {
	q := builder().Select(r.selectCols...).From(itemsTable)
	q = searchAny(q, f.Search, "code", "description")
	if f.BelowMin {
		q = q.Where("current_stock < min_stock")
	}

	order, err := orderBy(f.OrderBy, "code ASC",
		"code", "description", "current_stock", "min_stock", "unit_cost", "created_at", "updated_at")
	if err != nil {
		return domain.ListResult[*item.Item]{}, err
	}
	return selectPage[*item.Item](ctx, r.txManager.GetQuerier(ctx), q, order, f.ListFilter)
}

// IsReferenced reports ledger entries or document lines pointing at the item.
func (r *ItemRepo) IsReferenced(ctx context.Context, itemID id.ID) (bool, error) {
	var referenced bool
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM stores_ledger_entries WHERE item_id = $1)
		    OR EXISTS (SELECT 1 FROM stores_grn_lines WHERE item_id = $1)
		    OR EXISTS (SELECT 1 FROM stores_issuance_lines WHERE item_id = $1)
	`, itemID).Scan(&referenced)
	if err != nil {
		return false, fmt.Errorf("check item references: %w", err)
	}
	return referenced, nil
}

// LockStock implements ledger.StockStore.
func (r *ItemRepo) LockStock(ctx context.Context, itemID id.ID) (string, types.Quantity, error) {
	var (
		code  string
		stock types.Quantity
	)
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx,
		"SELECT code, current_stock FROM "+itemsTable+" WHERE id = $1 FOR UPDATE", itemID).
		Scan(&code, &stock)
	if err != nil {
		if pgxscan.NotFound(err) {
			return "", 0, apperror.NewNotFound("stores item", itemID.String())
		}
		return "", 0, fmt.Errorf("lock item: %w", err)
	}
	return code, stock, nil
}

// SetStock implements ledger.StockStore.
func (r *ItemRepo) SetStock(ctx context.Context, itemID id.ID, stock types.Quantity) error {
	_, err := r.txManager.GetQuerier(ctx).Exec(ctx,
		"UPDATE "+itemsTable+" SET current_stock = $1, updated_at = NOW() WHERE id = $2", stock, itemID)
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	return nil
}

// ItemIDs implements ledger.StockStore.
func (r *ItemRepo) ItemIDs(ctx context.Context) ([]id.ID, error) {
	var ids []id.ID
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &ids,
		"SELECT id FROM "+itemsTable+" ORDER BY code"); err != nil {
		return nil, fmt.Errorf("list item ids: %w", err)
	}
	return ids, nil
}
