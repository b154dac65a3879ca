// Package storestest holds in-memory stores fakes shared by package tests.
package storestest

import (
	"context"
	"sort"
	"sync"

	"confhub/internal/core/apperror"
	"confhub/internal/core/id"
	"confhub/internal/core/tx"
	"confhub/internal/core/types"
	"confhub/internal/domain/stores/item"
	"confhub/internal/domain/stores/ledger"
)

// Stores is an item catalog with a ledger, kept in memory.
type Stores struct {
	mu      sync.Mutex
	items   map[id.ID]*item.Item
	Entries []ledger.Entry
	Locked  []id.ID
}

// New creates empty stores.
func New() *Stores {
	return &Stores{items: map[id.ID]*item.Item{}}
}

// Add registers an item with the given stock and returns its id.
func (s *Stores) Add(code string, stock int64, unitCost string) id.ID {
	it := item.New(code, code+" description", "each")
	it.CurrentStock = types.NewQuantity(stock)
	it.UnitCost = types.MustMoney(unitCost)
	s.mu.Lock()
	s.items[it.ID] = it
	s.mu.Unlock()
	return it.ID
}

// Stock returns the current stock of an item.
func (s *Stores) Stock(itemID id.ID) types.Quantity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[itemID].CurrentStock
}

// Ledger builds a ledger service over these stores.
func (s *Stores) Ledger() *ledger.Service {
	return ledger.NewService(ledgerRepo{s}, s, tx.Inline, nil)
}

// GetByID implements the item lookup used by documents.
func (s *Stores) GetByID(_ context.Context, itemID id.ID) (*item.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("stores item", itemID.String())
	}
	cp := *it
	return &cp, nil
}

// LockStock implements ledger.StockStore.
func (s *Stores) LockStock(_ context.Context, itemID id.ID) (string, types.Quantity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[itemID]
	if !ok {
		return "", 0, apperror.NewNotFound("stores item", itemID.String())
	}
	s.Locked = append(s.Locked, itemID)
	return it.Code, it.CurrentStock, nil
}

// SetStock implements ledger.StockStore.
func (s *Stores) SetStock(_ context.Context, itemID id.ID, q types.Quantity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[itemID].CurrentStock = q
	return nil
}

// ItemIDs implements ledger.StockStore.
func (s *Stores) ItemIDs(context.Context) ([]id.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]id.ID, 0, len(s.items))
	for k := range s.items {
		ids = append(ids, k)
	}
	return ids, nil
}

type ledgerRepo struct{ s *Stores }

func (r ledgerRepo) Append(_ context.Context, e *ledger.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Entries = append(r.s.Entries, *e)
	return nil
}

func (r ledgerRepo) ListByItem(_ context.Context, itemID id.ID) ([]ledger.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []ledger.Entry
	for _, e := range r.s.Entries {
		if e.ItemID == itemID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TransactionDate.Before(out[j].TransactionDate)
	})
	return out, nil
}

func (r ledgerRepo) Latest(ctx context.Context, itemID id.ID) (*ledger.Entry, error) {
	all, _ := r.ListByItem(ctx, itemID)
	if len(all) == 0 {
		return nil, nil
	}
	return &all[len(all)-1], nil
}

func (r ledgerRepo) UpdateBalances(_ context.Context, entries []ledger.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range entries {
		for i := range r.s.Entries {
			if r.s.Entries[i].ID == u.ID {
				r.s.Entries[i].OpeningStock = u.OpeningStock
				r.s.Entries[i].ClosingBalance = u.ClosingBalance
			}
		}
	}
	return nil
}
