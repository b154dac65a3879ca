package ledger

import (
	"context"

	"confhub/internal/core/id"
	"confhub/internal/core/types"
)

// Repository persists ledger entries.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error

	// ListByItem returns the item's entries in replay order.
	ListByItem(ctx context.Context, itemID id.ID) ([]Entry, error)

	// Latest returns the last entry in replay order, or nil when the item has none.
	Latest(ctx context.Context, itemID id.ID) (*Entry, error)

	// UpdateBalances writes opening_stock and closing_balance of the given entries.
	UpdateBalances(ctx context.Context, entries []Entry) error
}

// StockStore is the item side of the ledger: the current_stock column.
type StockStore interface {
	// LockStock reads the item code and current stock with SELECT ... FOR UPDATE.
	LockStock(ctx context.Context, itemID id.ID) (code string, stock types.Quantity, err error)
	SetStock(ctx context.Context, itemID id.ID, stock types.Quantity) error
	ItemIDs(ctx context.Context) ([]id.ID, error)
}
