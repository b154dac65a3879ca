package issuance

import (
	"context"
	"fmt"
	"time"

	"confhub/internal/core/apperror"
	appctx "confhub/internal/core/context"
	"confhub/internal/core/id"
	"confhub/internal/core/numerator"
	"confhub/internal/core/tx"
	"confhub/internal/core/types"
	"confhub/internal/domain"
	"confhub/internal/domain/audit"
	"confhub/internal/domain/stores/ledger"
	"confhub/pkg/logger"
)

const entityName = "stores issuance"

// LineChange overrides the quantities of one line during a status change.
type LineChange struct {
	LineID           id.ID
	QuantityApproved *types.Quantity
	QuantityIssued   *types.Quantity
}

// StatusChange is an admin decision on a voucher.
type StatusChange struct {
	Status     Status
	ApprovedBy string
	IssuedBy   string
	Lines      []LineChange
}

// Service manages issuance vouchers.
type Service struct {
	repo      Repository
	ledger    *ledger.Service
	numerator numerator.Generator
	txManager tx.Manager
	audit     audit.Recorder
	now       func() time.Time
}

// NewService creates an issuance service.
func NewService(repo Repository, ledgerSvc *ledger.Service, gen numerator.Generator, txManager tx.Manager, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Discard
	}
	return &Service{
		repo:      repo,
		ledger:    ledgerSvc,
		numerator: gen,
		txManager: txManager,
		audit:     recorder,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a pending voucher under a new number.
func (s *Service) Create(ctx context.Context, v *Issuance) error {
	v.ApprovalStatus = StatusPending
	if err := v.Validate(ctx); err != nil {
		return err
	}
	for i := range v.Lines {
		v.Lines[i].IssuanceID = v.ID
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numerator.Next(ctx, numerator.DefaultConfig(numerator.PrefixIssuance), v.RequestDate)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		v.VoucherNumber = number

		if err := s.repo.Create(ctx, v); err != nil {
			return fmt.Errorf("create issuance: %w", err)
		}
		return s.repo.SaveLines(ctx, v.ID, v.Lines)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "issuance created", "id", v.ID, "number", v.VoucherNumber, "lines", len(v.Lines))
	return nil
}

// GetByID retrieves a voucher with lines.
func (s *Service) GetByID(ctx context.Context, issuanceID id.ID) (*Issuance, error) {
	v, err := s.repo.GetByID(ctx, issuanceID)
	if err != nil {
		return nil, err
	}
	if v.Lines, err = s.repo.GetLines(ctx, issuanceID); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	return v, nil
}

// List retrieves voucher headers.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Issuance], error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return domain.ListResult[*Issuance]{}, apperror.NewFieldError("unknown approval_status", "approval_status", "is not a valid status")
	}
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// SetStatus applies an admin decision. Issuing posts one issued ledger entry per
// line and fails as a whole when any item is short.
func (s *Service) SetStatus(ctx context.Context, issuanceID id.ID, change StatusChange) (*Issuance, error) {
	if !ValidStatus(change.Status) {
		return nil, apperror.NewFieldError("unknown approval_status", "approval_status", "is not a valid status")
	}

	var (
		result  *Issuance
		changed bool
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		v, err := s.repo.GetForUpdate(ctx, issuanceID)
		if err != nil {
			return err
		}
		if v.Lines, err = s.repo.GetLines(ctx, issuanceID); err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		result = v

		from := v.ApprovalStatus
		if from == change.Status {
			return nil
		}
		if !CanTransition(from, change.Status) {
			return apperror.NewInvalidTransition(entityName, string(from), string(change.Status))
		}

		if err := s.applyLines(v, change); err != nil {
			return err
		}

		actor := appctx.GetActor(ctx)
		switch change.Status {
		case StatusApproved:
			v.ApprovedBy = firstNonEmpty(change.ApprovedBy, actor)
		case StatusIssued:
			if err := s.issue(ctx, v); err != nil {
				return err
			}
			now := s.now()
			v.IssuedAt = &now
			v.IssuedBy = firstNonEmpty(change.IssuedBy, actor)
		case StatusRejected:
			if change.ApprovedBy != "" {
				v.ApprovedBy = change.ApprovedBy
			}
		}

		v.ApprovalStatus = change.Status
		v.Touch()
		if err := s.repo.Update(ctx, v); err != nil {
			return fmt.Errorf("update issuance: %w", err)
		}
		changed = true

		return s.audit.Record(ctx, "stores_issuance", v.ID, audit.ActionStatusChange, audit.Diff(
			map[string]any{"approval_status": from},
			map[string]any{"approval_status": change.Status},
		))
	})
	if err != nil {
		return nil, err
	}

	if changed {
		logger.Info(ctx, "issuance status changed",
			"id", result.ID,
			"number", result.VoucherNumber,
			"status", result.ApprovalStatus)
	}
	return result, nil
}

// applyLines sets approved and issued quantities from the change and the defaults.
// Approved quantities may only be set when approving, and issued quantities
// only when issuing; issued is checked against the approval already on record.
func (s *Service) applyLines(v *Issuance, change StatusChange) error {
	for _, lc := range change.Lines {
		l, n := v.line(lc.LineID)
		if l == nil {
			return apperror.NewFieldError("unknown line", "lines", "line "+lc.LineID.String()+" is not on this voucher")
		}
		if lc.QuantityApproved != nil {
			switch {
			case change.Status != StatusApproved:
				return lineError(n, "quantity_approved", "can only be set when approving")
			case lc.QuantityApproved.IsNegative():
				return lineError(n, "quantity_approved", "must not be negative")
			case *lc.QuantityApproved > l.QuantityOrdered:
				return lineError(n, "quantity_approved", "must not exceed quantity_ordered")
			}
			l.QuantityApproved = *lc.QuantityApproved
		}
		if lc.QuantityIssued != nil {
			switch {
			case change.Status != StatusIssued:
				return lineError(n, "quantity_issued", "can only be set when issuing")
			case lc.QuantityIssued.IsNegative():
				return lineError(n, "quantity_issued", "must not be negative")
			}
			l.QuantityIssued = *lc.QuantityIssued
		}
	}

	switch change.Status {
	case StatusApproved:
		for i := range v.Lines {
			l := &v.Lines[i]
			if !hasApproved(change.Lines, l.ID) {
				l.QuantityApproved = l.QuantityOrdered
			}
		}
	case StatusIssued:
		for i := range v.Lines {
			l := &v.Lines[i]
			if !hasIssued(change.Lines, l.ID) {
				l.QuantityIssued = l.QuantityApproved
			}
			if l.QuantityIssued > l.QuantityApproved {
				return lineError(i, "quantity_issued", "must not exceed quantity_approved")
			}
		}
	}
	return nil
}

func (s *Service) issue(ctx context.Context, v *Issuance) error {
	date := s.now()
	moves := make([]ledger.Movement, 0, len(v.Lines))
	for _, l := range v.Lines {
		if !l.QuantityIssued.IsPositive() {
			continue
		}
		moves = append(moves, ledger.Movement{
			ItemID:    l.ItemID,
			Date:      date,
			Type:      ledger.TypeIssued,
			Reference: v.VoucherNumber,
			Issued:    l.QuantityIssued,
			Remarks:   "Issued to " + v.Department,
		})
	}
	_, err := s.ledger.Post(ctx, moves)
	return err
}

func hasApproved(changes []LineChange, lineID id.ID) bool {
	for _, c := range changes {
		if c.LineID == lineID && c.QuantityApproved != nil {
			return true
		}
	}
	return false
}

func hasIssued(changes []LineChange, lineID id.ID) bool {
	for _, c := range changes {
		if c.LineID == lineID && c.QuantityIssued != nil {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
