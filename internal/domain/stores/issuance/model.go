// Package issuance provides stores issuance (requisition) vouchers.
package issuance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"confhub/internal/core/apperror"
	"confhub/internal/core/entity"
	"confhub/internal/core/id"
	"confhub/internal/core/types"
)

// Status is the approval state of a voucher.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusIssued   Status = "issued"
	StatusRejected Status = "rejected"
)

// transitions lists the allowed next states. Issued and rejected are terminal.
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusIssued, StatusRejected},
}

// ValidStatus reports whether s is a known status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusIssued, StatusRejected:
		return true
	}
	return false
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Issuance is a voucher releasing items to a department.
type Issuance struct {
	entity.BaseEntity

	VoucherNumber  string     `db:"voucher_number" json:"voucher_number"`
	RequestDate    time.Time  `db:"request_date" json:"request_date"`
	Department     string     `db:"department" json:"department"`
	Purpose        string     `db:"purpose" json:"purpose"`
	RequestedBy    string     `db:"requested_by" json:"requested_by"`
	ApprovedBy     string     `db:"approved_by" json:"approved_by"`
	IssuedBy       string     `db:"issued_by" json:"issued_by"`
	ApprovalStatus Status     `db:"approval_status" json:"approval_status"`
	IssuedAt       *time.Time `db:"issued_at" json:"issued_at"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one requested item.
type Line struct {
	ID               id.ID          `db:"id" json:"id"`
	IssuanceID       id.ID          `db:"issuance_id" json:"issuance_id"`
	LineNo           int            `db:"line_no" json:"line_no"`
	ItemID           id.ID          `db:"item_id" json:"item_id"`
	QuantityOrdered  types.Quantity `db:"quantity_ordered" json:"quantity_ordered"`
	QuantityApproved types.Quantity `db:"quantity_approved" json:"quantity_approved"`
	QuantityIssued   types.Quantity `db:"quantity_issued" json:"quantity_issued"`
}

// New creates a pending voucher.
func New() *Issuance {
	return &Issuance{
		BaseEntity:     entity.NewBaseEntity(),
		ApprovalStatus: StatusPending,
	}
}

// AddLine appends a requested item.
func (v *Issuance) AddLine(itemID id.ID, ordered types.Quantity) {
	v.Lines = append(v.Lines, Line{
		ID:              id.New(),
		IssuanceID:      v.ID,
		LineNo:          len(v.Lines) + 1,
		ItemID:          itemID,
		QuantityOrdered: ordered,
	})
}

func lineError(n int, field, msg string) error {
	key := fmt.Sprintf("lines[%d].%s", n, field)
	return apperror.NewFieldError(fmt.Sprintf("line %d: %s %s", n+1, field, msg), key, msg)
}

// Validate implements entity.Validatable.
func (v *Issuance) Validate(_ context.Context) error {
	if strings.TrimSpace(v.Department) == "" {
		return apperror.NewRequiredField("department")
	}
	if strings.TrimSpace(v.RequestedBy) == "" {
		return apperror.NewRequiredField("requested_by")
	}
	if v.RequestDate.IsZero() {
		return apperror.NewRequiredField("request_date")
	}
	if len(v.Lines) == 0 {
		return apperror.NewFieldError("at least one line is required", "lines", "at least one line is required")
	}
	for i, l := range v.Lines {
		if id.IsNil(l.ItemID) {
			return lineError(i, "item_id", "is required")
		}
		if !l.QuantityOrdered.IsPositive() {
			return lineError(i, "quantity_ordered", "must be greater than zero")
		}
	}
	return nil
}

// line finds a line by id.
func (v *Issuance) line(lineID id.ID) (*Line, int) {
	for i := range v.Lines {
		if v.Lines[i].ID == lineID {
			return &v.Lines[i], i
		}
	}
	return nil, -1
}
