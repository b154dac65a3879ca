package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"confhub/internal/core/apperror"
	"confhub/internal/core/id"
	"confhub/internal/core/tx"
	"confhub/internal/core/types"
	"confhub/internal/domain/audit"
	"confhub/pkg/logger"
)

// Service posts movements and maintains the ledger invariant.
type Service struct {
	repo      Repository
	stock     StockStore
	txManager tx.Manager
	audit     audit.Recorder
	now       func() time.Time
}

// NewService creates a ledger service.
func NewService(repo Repository, stock StockStore, txManager tx.Manager, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Discard
	}
	return &Service{
		repo:      repo,
		stock:     stock,
		txManager: txManager,
		audit:     recorder,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Post appends one entry per movement and moves current_stock with it.
// It must run inside the caller's transaction. Each item row is locked before
// its balance is read; an issue beyond the available stock fails the whole post.
func (s *Service) Post(ctx context.Context, movements []Movement) ([]Entry, error) {
	entries := make([]Entry, 0, len(movements))
	for i, m := range movements {
		if m.Received.IsNegative() || m.Issued.IsNegative() {
			return nil, apperror.NewValidation(fmt.Sprintf("movement %d: quantities must not be negative", i))
		}

		code, current, err := s.stock.LockStock(ctx, m.ItemID)
		if err != nil {
			return nil, err
		}

		closing := current + m.Received - m.Issued
		if closing.IsNegative() {
			return nil, apperror.NewInsufficientStock(code, m.Issued.String(), current.String())
		}

		entry := Entry{
			ID:               id.New(),
			ItemID:           m.ItemID,
			TransactionDate:  DateOnly(m.Date),
			TransactionType:  m.Type,
			ReferenceNumber:  m.Reference,
			OpeningStock:     current,
			QuantityReceived: m.Received,
			QuantityIssued:   m.Issued,
			ClosingBalance:   closing,
			Remarks:          m.Remarks,
			CreatedAt:        s.now(),
		}
		if err := s.repo.Append(ctx, &entry); err != nil {
			return nil, fmt.Errorf("append ledger entry: %w", err)
		}
		if err := s.stock.SetStock(ctx, m.ItemID, closing); err != nil {
			return nil, fmt.Errorf("set stock: %w", err)
		}
		entries = append(entries, entry)
	}

	if len(entries) > 0 {
		logger.Debug(ctx, "posted ledger movements", "count", len(entries), "reference", movements[0].Reference)
	}
	return entries, nil
}

// RecordOpening writes the baseline entry of a new item. Stock is not changed:
// the item row already carries it. Runs inside the caller's transaction.
func (s *Service) RecordOpening(ctx context.Context, itemID id.ID, qty types.Quantity, date time.Time, remarks string) (*Entry, error) {
	entry := Entry{
		ID:              id.New(),
		ItemID:          itemID,
		TransactionDate: DateOnly(date),
		TransactionType: TypeOpening,
		ReferenceNumber: "OPENING",
		OpeningStock:    qty,
		ClosingBalance:  qty,
		Remarks:         remarks,
		CreatedAt:       s.now(),
	}
	if err := s.repo.Append(ctx, &entry); err != nil {
		return nil, fmt.Errorf("append opening entry: %w", err)
	}
	return &entry, nil
}

// ManualEntry is an operator-entered opening balance or adjustment.
type ManualEntry struct {
	Type      TransactionType
	Date      time.Time
	Quantity  types.Quantity // signed for adjustments
	Reference string
	Remarks   string
}

// AddManual appends an opening or adjustment entry after the latest entry.
// An opening is only accepted as the first entry of an item.
func (s *Service) AddManual(ctx context.Context, itemID id.ID, in ManualEntry) (*Entry, error) {
	if in.Type != TypeOpening && in.Type != TypeAdjustment {
		return nil, apperror.NewFieldError("transaction_type must be opening or adjustment", "transaction_type", "must be opening or adjustment")
	}
	if in.Quantity.IsZero() {
		return nil, apperror.NewFieldError("quantity must not be zero", "quantity", "must not be zero")
	}
	if in.Type == TypeOpening && in.Quantity.IsNegative() {
		return nil, apperror.NewFieldError("opening quantity must be positive", "quantity", "must be positive")
	}
	if in.Date.IsZero() {
		in.Date = s.now()
	}

	var result *Entry
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, _, err := s.stock.LockStock(ctx, itemID); err != nil {
			return err
		}
		latest, err := s.repo.Latest(ctx, itemID)
		if err != nil {
			return fmt.Errorf("latest entry: %w", err)
		}
		if latest != nil && DateOnly(in.Date).Before(latest.TransactionDate) {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"manual entries cannot be dated before the latest ledger entry").
				WithDetail("latest_date", latest.TransactionDate.Format("2006-01-02"))
		}

		if in.Type == TypeOpening {
			if latest != nil {
				return apperror.NewBusinessRule(apperror.CodeBusinessRule,
					"an opening entry is only allowed on an item without ledger entries")
			}
			entry, err := s.RecordOpening(ctx, itemID, in.Quantity, in.Date, in.Remarks)
			if err != nil {
				return err
			}
			result = entry
			return s.stock.SetStock(ctx, itemID, in.Quantity)
		}

		m := Movement{
			ItemID:    itemID,
			Date:      in.Date,
			Type:      TypeAdjustment,
			Reference: in.Reference,
			Remarks:   in.Remarks,
		}
		if in.Quantity.IsPositive() {
			m.Received = in.Quantity
		} else {
			m.Issued = in.Quantity.Abs()
		}
		if m.Reference == "" {
			m.Reference = "ADJUSTMENT"
		}
		entries, err := s.Post(ctx, []Movement{m})
		if err != nil {
			return err
		}
		result = &entries[0]
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "manual ledger entry added",
		"item_id", itemID,
		"type", in.Type,
		"quantity", in.Quantity.String())
	return result, nil
}

// List returns the item's entries in replay order.
func (s *Service) List(ctx context.Context, itemID id.ID) ([]Entry, error) {
	return s.repo.ListByItem(ctx, itemID)
}

// RecalculateResult is the outcome of a ledger replay.
type RecalculateResult struct {
	ItemID         id.ID          `json:"item_id"`
	Entries        []Entry        `json:"entries"`
	Updated        int            `json:"updated"`
	ClosingBalance types.Quantity `json:"closing_balance"`
}

// Recalculate replays the item's ledger under the item row lock and persists
// only the rows that changed, then aligns current_stock with the final balance.
func (s *Service) Recalculate(ctx context.Context, itemID id.ID) (*RecalculateResult, error) {
	var result *RecalculateResult

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		_, current, err := s.stock.LockStock(ctx, itemID)
		if err != nil {
			return err
		}

		entries, err := s.repo.ListByItem(ctx, itemID)
		if err != nil {
			return fmt.Errorf("list entries: %w", err)
		}

		changed := Replay(entries)
		result = &RecalculateResult{
			ItemID:         itemID,
			Entries:        entries,
			Updated:        len(changed),
			ClosingBalance: current,
		}
		if len(entries) == 0 {
			return nil
		}

		if len(changed) > 0 {
			dirty := make([]Entry, len(changed))
			for i, idx := range changed {
				dirty[i] = entries[idx]
			}
			if err := s.repo.UpdateBalances(ctx, dirty); err != nil {
				return fmt.Errorf("update balances: %w", err)
			}
		}

		final := entries[len(entries)-1].ClosingBalance
		result.ClosingBalance = final
		if final != current {
			if err := s.stock.SetStock(ctx, itemID, final); err != nil {
				return fmt.Errorf("set stock: %w", err)
			}
		}

		if len(changed) > 0 || final != current {
			return s.audit.Record(ctx, "stores_item", itemID, audit.ActionRecalculate, map[string]any{
				"updated":       len(changed),
				"current_stock": audit.Diff(map[string]any{"value": current.String()}, map[string]any{"value": final.String()}),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "ledger recalculated",
		"item_id", itemID,
		"entries", len(result.Entries),
		"updated", result.Updated,
		"closing_balance", result.ClosingBalance.String())
	return result, nil
}

// RecalculateAll replays every item's ledger, one transaction per item.
// A failing item is logged and skipped; the joined errors are returned.
func (s *Service) RecalculateAll(ctx context.Context) (items, updated int, err error) {
	ids, err := s.stock.ItemIDs(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list items: %w", err)
	}

	var errs []error
	for _, itemID := range ids {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		res, err := s.Recalculate(ctx, itemID)
		if err != nil {
			logger.Warn(ctx, "ledger recalculation failed", "item_id", itemID, "error", err)
			errs = append(errs, fmt.Errorf("item %s: %w", itemID, err))
			continue
		}
		items++
		updated += res.Updated
	}
	return items, updated, errors.Join(errs...)
}
