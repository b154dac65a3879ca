// Package grn provides Goods Received Notes.
package grn

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

// GRN records items physically received into the stores.
type GRN struct {
	entity.BaseEntity

	GRNNumber          string      `db:"grn_number" json:"grn_number"`
	ReceivedDate       time.Time   `db:"received_date" json:"received_date"`
	SupplierName       string      `db:"supplier_name" json:"supplier_name"`
	OrderReference     string      `db:"order_reference" json:"order_reference"`
	DeliveryNoteNumber string      `db:"delivery_note_number" json:"delivery_note_number"`
	ReceivedBy         string      `db:"received_by" json:"received_by"`
	InspectedBy        string      `db:"inspected_by" json:"inspected_by"`
	ApprovedBy         string      `db:"approved_by" json:"approved_by"`
	Remarks            string      `db:"remarks" json:"remarks"`
	TotalValue         types.Money `db:"total_value" json:"total_value"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one received item.
type Line struct {
	ID                id.ID          `db:"id" json:"id"`
	GRNID             id.ID          `db:"grn_id" json:"grn_id"`
	LineNo            int            `db:"line_no" json:"line_no"`
	ItemID            id.ID          `db:"item_id" json:"item_id"`
	QuantityOrdered   types.Quantity `db:"quantity_ordered" json:"quantity_ordered"`
	QuantityDelivered types.Quantity `db:"quantity_delivered" json:"quantity_delivered"`
	UnitCost          types.Money    `db:"unit_cost" json:"unit_cost"`
	TotalCost         types.Money    `db:"total_cost" json:"total_cost"`
}

// New creates an empty GRN.
func New() *GRN {
	return &GRN{
		BaseEntity: entity.NewBaseEntity(),
		TotalValue: types.Zero(),
	}
}

// AddLine appends a line with the next line number.
func (g *GRN) AddLine(itemID id.ID, ordered, delivered types.Quantity, unitCost types.Money) {
	g.Lines = append(g.Lines, Line{
		ID:                id.New(),
		GRNID:             g.ID,
		LineNo:            len(g.Lines) + 1,
		ItemID:            itemID,
		QuantityOrdered:   ordered,
		QuantityDelivered: delivered,
		UnitCost:          unitCost,
	})
}

func lineError(n int, field, msg string) error {
	key := fmt.Sprintf("lines[%d].%s", n, field)
	return apperror.NewFieldError(fmt.Sprintf("line %d: %s %s", n+1, field, msg), key, msg)
}

// Validate implements entity.Validatable.
func (g *GRN) Validate(_ context.Context) error {
	if strings.TrimSpace(g.SupplierName) == "" {
		return apperror.NewRequiredField("supplier_name")
	}
	if strings.TrimSpace(g.ReceivedBy) == "" {
		return apperror.NewRequiredField("received_by")
	}
	if g.ReceivedDate.IsZero() {
		return apperror.NewRequiredField("received_date")
	}
	if len(g.Lines) == 0 {
		return apperror.NewFieldError("at least one line is required", "lines", "at least one line is required")
	}
	for i, l := range g.Lines {
		switch {
		case id.IsNil(l.ItemID):
			return lineError(i, "item_id", "is required")
		case l.QuantityDelivered.IsNegative():
			return lineError(i, "quantity_delivered", "must not be negative")
		case l.QuantityOrdered.IsNegative():
			return lineError(i, "quantity_ordered", "must not be negative")
		case l.UnitCost.IsNegative():
			return lineError(i, "unit_cost", "must not be negative")
		}
	}
	return nil
}

// ComputeTotals sets each line total to delivered x unit cost and sums them.
func (g *GRN) ComputeTotals() {
	total := types.Zero()
	for i := range g.Lines {
		l := &g.Lines[i]
		l.TotalCost = l.QuantityDelivered.Decimal().Mul(l.UnitCost).Round(2)
		total = total.Add(l.TotalCost)
	}
	g.TotalValue = total
}
