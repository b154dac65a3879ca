// Package ledger keeps the per-item stock ledger and its running balances.
package ledger

import (
	"time"

	"confhub/internal/core/id"
	"confhub/internal/core/types"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TypeOpening    TransactionType = "opening"
	TypeReceived   TransactionType = "received"
	TypeIssued     TransactionType = "issued"
	TypeAdjustment TransactionType = "adjustment"
)

// Entry is one stock movement with the balance around it.
// Entries of an item replay in (TransactionDate, CreatedAt, ID) order.
type Entry struct {
	ID               id.ID           `db:"id" json:"id"`
	ItemID           id.ID           `db:"item_id" json:"item_id"`
	TransactionDate  time.Time       `db:"transaction_date" json:"transaction_date"`
	TransactionType  TransactionType `db:"transaction_type" json:"transaction_type"`
	ReferenceNumber  string          `db:"reference_number" json:"reference_number"`
	OpeningStock     types.Quantity  `db:"opening_stock" json:"opening_stock"`
	QuantityReceived types.Quantity  `db:"quantity_received" json:"quantity_received"`
	QuantityIssued   types.Quantity  `db:"quantity_issued" json:"quantity_issued"`
	ClosingBalance   types.Quantity  `db:"closing_balance" json:"closing_balance"`
	Remarks          string          `db:"remarks" json:"remarks"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// Movement is a stock change to be appended to the ledger.
type Movement struct {
	ItemID    id.ID
	Date      time.Time
	Type      TransactionType
	Reference string
	Received  types.Quantity
	Issued    types.Quantity
	Remarks   string
}

// Replay rebuilds running balances in place. The first entry keeps its stored
// opening stock; every later entry opens at the previous closing balance.
// It returns the indexes of the entries whose balances changed.
func Replay(entries []Entry) []int {
	var (
		changed []int
		prev    types.Quantity
	)
	for i := range entries {
		e := &entries[i]
		opening := e.OpeningStock
		if i > 0 {
			opening = prev
		}
		closing := opening + e.QuantityReceived - e.QuantityIssued

		if e.OpeningStock != opening || e.ClosingBalance != closing {
			e.OpeningStock = opening
			e.ClosingBalance = closing
			changed = append(changed, i)
		}
		prev = closing
	}
	return changed
}

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
