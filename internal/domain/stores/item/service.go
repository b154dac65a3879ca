package item

import (
	"context"
	"fmt"
	"time"

	"confhub/internal/core/apperror"
	"confhub/internal/core/id"
	"confhub/internal/core/tx"
	"confhub/internal/domain"
	"confhub/internal/domain/stores/ledger"
	"confhub/pkg/logger"
)

// Service provides business logic for stores items.
type Service struct {
	repo      Repository
	ledger    *ledger.Service
	txManager tx.Manager
}

// NewService creates an item service.
func NewService(repo Repository, ledgerSvc *ledger.Service, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledgerSvc,
		txManager: txManager,
	}
}

// Create stores a new item. A positive initial stock is recorded as the
// opening ledger entry in the same transaction.
func (s *Service) Create(ctx context.Context, it *Item) error {
	if err := it.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, it); err != nil {
			return fmt.Errorf("create item: %w", err)
		}
		if it.CurrentStock.IsPositive() {
			if _, err := s.ledger.RecordOpening(ctx, it.ID, it.CurrentStock, it.CreatedAt, "Opening stock"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "stores item created", "id", it.ID, "code", it.Code)
	return nil
}

// GetByID retrieves an item.
func (s *Service) GetByID(ctx context.Context, itemID id.ID) (*Item, error) {
	return s.repo.GetByID(ctx, itemID)
}

// Update applies descriptive changes. The stock level is not editable here.
func (s *Service) Update(ctx context.Context, itemID id.ID, apply func(it *Item)) (*Item, error) {
	it, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	stock := it.CurrentStock
	apply(it)
	it.ID = itemID
	it.CurrentStock = stock
	it.UpdatedAt = time.Now().UTC()

	if err := it.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, it); err != nil {
		return nil, err
	}

	logger.Info(ctx, "stores item updated", "id", it.ID, "code", it.Code)
	return it, nil
}

// Delete removes an item that nothing references.
func (s *Service) Delete(ctx context.Context, itemID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, itemID); err != nil {
			return err
		}
		used, err := s.repo.IsReferenced(ctx, itemID)
		if err != nil {
			return fmt.Errorf("check references: %w", err)
		}
		if used {
			return apperror.NewConflict("item has ledger entries or document lines").
				WithDetail("id", itemID.String())
		}
		return s.repo.Delete(ctx, itemID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "stores item deleted", "id", itemID)
	return nil
}

// List retrieves items with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Item], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// All returns every item ordered by code, for exports.
func (s *Service) All(ctx context.Context) ([]*Item, error) {
	filter := ListFilter{ListFilter: domain.ListFilter{OrderBy: "code", Limit: domain.MaxListLimit}}
	var items []*Item
	for {
		page, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		if len(page.Items) < filter.Limit {
			return items, nil
		}
		filter.Offset += filter.Limit
	}
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Created int
	Skipped []string // codes that already existed
}

// Import creates items one by one, skipping codes that already exist.
func (s *Service) Import(ctx context.Context, items []*Item) (ImportResult, error) {
	var res ImportResult
	for _, it := range items {
		err := s.Create(ctx, it)
		switch {
		case err == nil:
			res.Created++
		case apperror.HasCode(err, apperror.CodeDuplicate):
			res.Skipped = append(res.Skipped, it.Code)
		default:
			return res, fmt.Errorf("import %s: %w", it.Code, err)
		}
	}
	return res, nil
}
