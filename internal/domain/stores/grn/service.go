package grn

import (
	"context"
	"fmt"

	"confhub/internal/core/apperror"
	"confhub/internal/core/id"
	"confhub/internal/core/numerator"
	"confhub/internal/core/tx"
	"confhub/internal/core/types"
	"confhub/internal/domain"
	"confhub/internal/domain/stores/item"
	"confhub/internal/domain/stores/ledger"
	"confhub/pkg/logger"
)

// ItemReader looks up the items referenced by lines.
type ItemReader interface {
	GetByID(ctx context.Context, itemID id.ID) (*item.Item, error)
}

// Service posts goods received notes.
type Service struct {
	repo      Repository
	items     ItemReader
	ledger    *ledger.Service
	numerator numerator.Generator
	txManager tx.Manager
}

// NewService creates a GRN service.
func NewService(repo Repository, items ItemReader, ledgerSvc *ledger.Service, gen numerator.Generator, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		items:     items,
		ledger:    ledgerSvc,
		numerator: gen,
		txManager: txManager,
	}
}

// Create numbers and stores the GRN, then receives every delivered quantity
// into the ledger. All of it happens in one transaction.
func (s *Service) Create(ctx context.Context, g *GRN) error {
	if err := g.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for i := range g.Lines {
			l := &g.Lines[i]
			it, err := s.items.GetByID(ctx, l.ItemID)
			if err != nil {
				if apperror.IsNotFound(err) {
					return lineError(i, "item_id", "unknown item")
				}
				return err
			}
			if l.UnitCost.IsZero() {
				l.UnitCost = it.UnitCost
			}
			l.GRNID = g.ID
		}
		g.ComputeTotals()

		number, err := s.numerator.Next(ctx, numerator.DefaultConfig(numerator.PrefixGRN), g.ReceivedDate)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		g.GRNNumber = number

		if err := s.repo.Create(ctx, g); err != nil {
			return fmt.Errorf("create grn: %w", err)
		}
		if err := s.repo.SaveLines(ctx, g.ID, g.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		var moves []ledger.Movement
		for _, l := range g.Lines {
			if !l.QuantityDelivered.IsPositive() {
				continue
			}
			moves = append(moves, ledger.Movement{
				ItemID:    l.ItemID,
				Date:      g.ReceivedDate,
				Type:      ledger.TypeReceived,
				Reference: g.GRNNumber,
				Received:  l.QuantityDelivered,
				Remarks:   "Received from " + g.SupplierName,
			})
		}
		_, err = s.ledger.Post(ctx, moves)
		return err
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "grn created",
		"id", g.ID,
		"number", g.GRNNumber,
		"lines", len(g.Lines),
		"delivered", totalDelivered(g.Lines).String(),
		"total_value", g.TotalValue.StringFixed(2))
	return nil
}

// GetByID retrieves a GRN with lines.
func (s *Service) GetByID(ctx context.Context, grnID id.ID) (*GRN, error) {
	g, err := s.repo.GetByID(ctx, grnID)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.GetLines(ctx, grnID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	g.Lines = lines
	return g, nil
}

// List retrieves GRN headers.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*GRN], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

func totalDelivered(lines []Line) types.Quantity {
	var q types.Quantity
	for _, l := range lines {
		q += l.QuantityDelivered
	}
	return q
}
