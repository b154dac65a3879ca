package dto

import (
	"time"

	"confhub/internal/core/id"
	"confhub/internal/core/types"
	"confhub/internal/domain/stores/grn"
	"confhub/internal/domain/stores/issuance"
	"confhub/internal/domain/stores/item"
	"confhub/internal/domain/stores/ledger"
)

const dateLayout = "2006-01-02"

// ItemRequest creates or updates a stores item. CurrentStock is only read on create.
type ItemRequest struct {
	Code         string         `json:"code" binding:"required"`
	Description  string         `json:"description" binding:"required"`
	UnitOfIssue  string         `json:"unit_of_issue"`
	CurrentStock types.Quantity `json:"current_stock"`
	MinStock     types.Quantity `json:"min_stock"`
	MaxStock     types.Quantity `json:"max_stock"`
	UnitCost     types.Money    `json:"unit_cost"`
}

// ToModel builds a new item.
func (r ItemRequest) ToModel() *item.Item {
	it := item.New(r.Code, r.Description, r.UnitOfIssue)
	it.CurrentStock = r.CurrentStock
	it.MinStock = r.MinStock
	it.MaxStock = r.MaxStock
	it.UnitCost = r.UnitCost
	return it
}

// Apply copies the descriptive fields onto it.
func (r ItemRequest) Apply(it *item.Item) {
	it.Code = r.Code
	it.Description = r.Description
	it.UnitOfIssue = r.UnitOfIssue
	it.MinStock = r.MinStock
	it.MaxStock = r.MaxStock
	it.UnitCost = r.UnitCost
}

// ItemQuery is the item list query string.
type ItemQuery struct {
	ListQuery
	BelowMin bool `form:"belowMin"`
}

// ToFilter converts the query to a domain filter.
func (q ItemQuery) ToFilter() item.ListFilter {
	f := item.ListFilter{ListFilter: q.ToListFilter(), BelowMin: q.BelowMin}
	return f
}

// GRNLineRequest is one received line.
type GRNLineRequest struct {
	ItemID            string         `json:"item_id" binding:"required,uuid"`
	QuantityOrdered   types.Quantity `json:"quantity_ordered"`
	QuantityDelivered types.Quantity `json:"quantity_delivered"`
	UnitCost          types.Money    `json:"unit_cost"`
}

// GRNRequest records goods received.
type GRNRequest struct {
	ReceivedDate       string           `json:"received_date" binding:"required,datetime=2006-01-02"`
	SupplierName       string           `json:"supplier_name" binding:"required"`
	OrderReference     string           `json:"order_reference"`
	DeliveryNoteNumber string           `json:"delivery_note_number"`
	ReceivedBy         string           `json:"received_by" binding:"required"`
	InspectedBy        string           `json:"inspected_by"`
	ApprovedBy         string           `json:"approved_by"`
	Remarks            string           `json:"remarks"`
	Lines              []GRNLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToModel builds the GRN with its lines.
func (r GRNRequest) ToModel() (*grn.GRN, error) {
	date, err := time.Parse(dateLayout, r.ReceivedDate)
	if err != nil {
		return nil, fieldError("received_date", "must be a date in 2006-01-02 format")
	}

	g := grn.New()
	g.ReceivedDate = date
	g.SupplierName = r.SupplierName
	g.OrderReference = r.OrderReference
	g.DeliveryNoteNumber = r.DeliveryNoteNumber
	g.ReceivedBy = r.ReceivedBy
	g.InspectedBy = r.InspectedBy
	g.ApprovedBy = r.ApprovedBy
	g.Remarks = r.Remarks
	for _, l := range r.Lines {
		itemID, err := id.Parse(l.ItemID)
		if err != nil {
			return nil, fieldError("item_id", "must be a valid id")
		}
		g.AddLine(itemID, l.QuantityOrdered, l.QuantityDelivered, l.UnitCost)
	}
	return g, nil
}

// GRNQuery is the GRN list query string. Dates are inclusive.
type GRNQuery struct {
	ListQuery
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// ToFilter converts the query to a domain filter.
func (q GRNQuery) ToFilter() grn.ListFilter {
	f := grn.ListFilter{ListFilter: q.ToListFilter()}
	f.From = parseDate(q.From)
	f.To = parseDate(q.To)
	return f
}

// IssuanceLineRequest is one requested line.
type IssuanceLineRequest struct {
	ItemID          string         `json:"item_id" binding:"required,uuid"`
	QuantityOrdered types.Quantity `json:"quantity_ordered" binding:"gt=0"`
}

// IssuanceRequest requests items for a department.
type IssuanceRequest struct {
	RequestDate string                `json:"request_date" binding:"required,datetime=2006-01-02"`
	Department  string                `json:"department" binding:"required"`
	Purpose     string                `json:"purpose"`
	RequestedBy string                `json:"requested_by" binding:"required"`
	Lines       []IssuanceLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToModel builds a pending voucher.
func (r IssuanceRequest) ToModel() (*issuance.Issuance, error) {
	date, err := time.Parse(dateLayout, r.RequestDate)
	if err != nil {
		return nil, fieldError("request_date", "must be a date in 2006-01-02 format")
	}

	v := issuance.New()
	v.RequestDate = date
	v.Department = r.Department
	v.Purpose = r.Purpose
	v.RequestedBy = r.RequestedBy
	for _, l := range r.Lines {
		itemID, err := id.Parse(l.ItemID)
		if err != nil {
			return nil, fieldError("item_id", "must be a valid id")
		}
		v.AddLine(itemID, l.QuantityOrdered)
	}
	return v, nil
}

// IssuanceLineChange overrides quantities of one line.
type IssuanceLineChange struct {
	LineID           string          `json:"line_id" binding:"required,uuid"`
	QuantityApproved *types.Quantity `json:"quantity_approved"`
	QuantityIssued   *types.Quantity `json:"quantity_issued"`
}

// IssuanceStatusRequest moves a voucher through its workflow.
type IssuanceStatusRequest struct {
	ApprovalStatus string               `json:"approval_status" binding:"required"`
	ApprovedBy     string               `json:"approved_by"`
	IssuedBy       string               `json:"issued_by"`
	Lines          []IssuanceLineChange `json:"lines" binding:"omitempty,dive"`
}

// ToChange converts the request to a domain change.
func (r IssuanceStatusRequest) ToChange() (issuance.StatusChange, error) {
	change := issuance.StatusChange{
		Status:     issuance.Status(r.ApprovalStatus),
		ApprovedBy: r.ApprovedBy,
		IssuedBy:   r.IssuedBy,
	}
	for _, l := range r.Lines {
		lineID, err := id.Parse(l.LineID)
		if err != nil {
			return change, fieldError("line_id", "must be a valid id")
		}
		change.Lines = append(change.Lines, issuance.LineChange{
			LineID:           lineID,
			QuantityApproved: l.QuantityApproved,
			QuantityIssued:   l.QuantityIssued,
		})
	}
	return change, nil
}

// IssuanceQuery is the voucher list query string.
type IssuanceQuery struct {
	ListQuery
	ApprovalStatus string `form:"approval_status"`
}

// ToFilter converts the query to a domain filter.
func (q IssuanceQuery) ToFilter() issuance.ListFilter {
	f := issuance.ListFilter{ListFilter: q.ToListFilter(), Status: issuance.Status(q.ApprovalStatus)}
	return f
}

// LedgerEntryRequest is a manual opening or adjustment.
type LedgerEntryRequest struct {
	TransactionType string         `json:"transaction_type" binding:"required,oneof=opening adjustment"`
	TransactionDate string         `json:"transaction_date" binding:"omitempty,datetime=2006-01-02"`
	Quantity        types.Quantity `json:"quantity"`
	ReferenceNumber string         `json:"reference_number"`
	Remarks         string         `json:"remarks"`
}

// ToManual converts the request. A missing date means today.
func (r LedgerEntryRequest) ToManual(now time.Time) ledger.ManualEntry {
	date := now
	if d := parseDate(r.TransactionDate); d != nil {
		date = *d
	}
	return ledger.ManualEntry{
		Type:      ledger.TransactionType(r.TransactionType),
		Date:      date,
		Quantity:  r.Quantity,
		Reference: r.ReferenceNumber,
		Remarks:   r.Remarks,
	}
}

// LedgerResponse is an item with its ledger in replay order.
type LedgerResponse struct {
	Item    *item.Item     `json:"item"`
	Entries []ledger.Entry `json:"entries"`
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}
