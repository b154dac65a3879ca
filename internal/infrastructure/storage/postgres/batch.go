package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var errNoTx = errors.New("bulk operation requires a transaction")

// Bulk writes stores document lines and balance rewrites with as few
// round-trips as pgx allows. Both methods must run inside RunInTransaction.
type Bulk struct {
	txManager *TxManager
}

func NewBulk(txManager *TxManager) *Bulk {
	return &Bulk{txManager: txManager}
}

// CopyStructs COPYs items into table, one row per item, taking the values of
// columns from each item's db tags.
func CopyStructs[T any](ctx context.Context, b *Bulk, table string, columns []string, items []T) (int64, error) {
	rows := make([][]any, len(items))
	for i := range items {
		m := StructToMap(items[i])
		row := make([]any, len(columns))
		for j, col := range columns {
			row[j] = m[col]
		}
		rows[i] = row
	}
	return b.Copy(ctx, table, columns, rows)
}

// Copy COPYs raw rows into table.
func (b *Bulk) Copy(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	tx := b.txManager.GetTx(ctx)
	if tx == nil {
		return 0, errNoTx
	}
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("copy into %s: %w", table, err)
	}
	return n, nil
}

// Exec sends every statement in one pgx batch and fails on the first error.
func (b *Bulk) Exec(ctx context.Context, stmts ...squirrel.Sqlizer) error {
	tx := b.txManager.GetTx(ctx)
	if tx == nil {
		return errNoTx
	}
	if len(stmts) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, s := range stmts {
		sql, args, err := s.ToSql()
		if err != nil {
			return fmt.Errorf("build statement %d: %w", i, err)
		}
		batch.Queue(sql, args...)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for i := range stmts {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
	}
	return nil
}
