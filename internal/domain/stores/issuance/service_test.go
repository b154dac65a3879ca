package issuance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confhub/internal/core/apperror"
	appctx "confhub/internal/core/context"
	"confhub/internal/core/id"
	"confhub/internal/core/numerator"
	"confhub/internal/core/tx"
	"confhub/internal/core/types"
	"confhub/internal/domain"
	"confhub/internal/domain/stores/ledger"
	"confhub/internal/domain/stores/storestest"
	"confhub/internal/domain/submission/submissiontest"
)

type memoryVouchers struct {
	rows  map[id.ID]Issuance
	lines map[id.ID][]Line
}

func (m *memoryVouchers) Create(_ context.Context, v *Issuance) error {
	cp := *v
	cp.Lines = nil
	m.rows[v.ID] = cp
	return nil
}

func (m *memoryVouchers) SaveLines(_ context.Context, issuanceID id.ID, lines []Line) error {
	m.lines[issuanceID] = append([]Line(nil), lines...)
	return nil
}

func (m *memoryVouchers) GetByID(_ context.Context, issuanceID id.ID) (*Issuance, error) {
	v, ok := m.rows[issuanceID]
	if !ok {
		return nil, apperror.NewNotFound(entityName, issuanceID.String())
	}
	return &v, nil
}

func (m *memoryVouchers) GetForUpdate(ctx context.Context, issuanceID id.ID) (*Issuance, error) {
	return m.GetByID(ctx, issuanceID)
}

func (m *memoryVouchers) GetLines(_ context.Context, issuanceID id.ID) ([]Line, error) {
	return append([]Line(nil), m.lines[issuanceID]...), nil
}

func (m *memoryVouchers) Update(_ context.Context, v *Issuance) error {
	cp := *v
	cp.Lines = nil
	m.rows[v.ID] = cp
	m.lines[v.ID] = append([]Line(nil), v.Lines...)
	return nil
}

func (m *memoryVouchers) List(context.Context, ListFilter) (domain.ListResult[*Issuance], error) {
	return domain.ListResult[*Issuance]{}, nil
}

type fixture struct {
	svc    *Service
	repo   *memoryVouchers
	stores *storestest.Stores
	audit  *submissiontest.MemoryAudit
}

func newFixture() *fixture {
	repo := &memoryVouchers{rows: map[id.ID]Issuance{}, lines: map[id.ID][]Line{}}
	stores := storestest.New()
	rec := &submissiontest.MemoryAudit{}
	svc := NewService(repo, stores.Ledger(), &numerator.MockGenerator{}, tx.Inline, rec)
	svc.now = func() time.Time { return time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC) }
	return &fixture{svc: svc, repo: repo, stores: stores, audit: rec}
}

func (f *fixture) voucher(t *testing.T, lines map[id.ID]int64) *Issuance {
	t.Helper()
	v := New()
	v.RequestDate = time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	v.Department = "Secretariat"
	v.Purpose = "Delegate packs"
	v.RequestedBy = "M. Phiri"
	for itemID, qty := range lines {
		v.AddLine(itemID, types.NewQuantity(qty))
	}
	require.NoError(t, f.svc.Create(context.Background(), v))
	return v
}

func qty(units int64) *types.Quantity {
	q := types.NewQuantity(units)
	return &q
}

func TestService_Create(t *testing.T) {
	f := newFixture()
	pens := f.stores.Add("PEN-001", 10, "3.50")

	v := f.voucher(t, map[id.ID]int64{pens: 4})
	assert.Equal(t, "SIV-2026-00001", v.VoucherNumber)
	assert.Equal(t, StatusPending, v.ApprovalStatus)
	assert.Len(t, f.repo.lines[v.ID], 1)
	assert.Empty(t, f.stores.Entries)
}

func TestIssuance_Validate(t *testing.T) {
	v := New()
	v.RequestDate = time.Now()
	v.Department = "Secretariat"
	v.RequestedBy = "M. Phiri"
	assert.True(t, apperror.IsValidation(v.Validate(context.Background())), "no lines")

	v.AddLine(id.New(), 0)
	assert.True(t, apperror.IsValidation(v.Validate(context.Background())), "zero ordered")

	v.Lines[0].QuantityOrdered = types.NewQuantity(1)
	assert.NoError(t, v.Validate(context.Background()))
}

func TestService_ApproveThenIssue(t *testing.T) {
	f := newFixture()
	pens := f.stores.Add("PEN-001", 10, "3.50")
	v := f.voucher(t, map[id.ID]int64{pens: 4})
	ctx := appctx.WithAdmin(context.Background(), &appctx.AdminContext{Username: "admin"})

	approved, err := f.svc.SetStatus(ctx, v.ID, StatusChange{Status: StatusApproved})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.ApprovalStatus)
	assert.Equal(t, "admin", approved.ApprovedBy)
	assert.Equal(t, types.NewQuantity(4), approved.Lines[0].QuantityApproved)

	issued, err := f.svc.SetStatus(ctx, v.ID, StatusChange{Status: StatusIssued, IssuedBy: "Stores clerk"})
	require.NoError(t, err)
	assert.Equal(t, StatusIssued, issued.ApprovalStatus)
	assert.Equal(t, "Stores clerk", issued.IssuedBy)
	require.NotNil(t, issued.IssuedAt)
	assert.Equal(t, types.NewQuantity(4), issued.Lines[0].QuantityIssued)

	require.Len(t, f.stores.Entries, 1)
	e := f.stores.Entries[0]
	assert.Equal(t, ledger.TypeIssued, e.TransactionType)
	assert.Equal(t, v.VoucherNumber, e.ReferenceNumber)
	assert.Equal(t, types.NewQuantity(10), e.OpeningStock)
	assert.Equal(t, types.NewQuantity(6), e.ClosingBalance)
	assert.Equal(t, types.NewQuantity(6), f.stores.Stock(pens))
	assert.Len(t, f.audit.Entries, 2)
}

func TestService_PartialApproval(t *testing.T) {
	f := newFixture()
	pens := f.stores.Add("PEN-001", 10, "3.50")
	v := f.voucher(t, map[id.ID]int64{pens: 8})
	lineID := v.Lines[0].ID

	_, err := f.svc.SetStatus(context.Background(), v.ID, StatusChange{
		Status: StatusApproved,
		Lines:  []LineChange{{LineID: lineID, QuantityApproved: qty(5)}},
	})
	require.NoError(t, err)

	_, err = f.svc.SetStatus(context.Background(), v.ID, StatusChange{
		Status: StatusIssued,
		Lines:  []LineChange{{LineID: lineID, QuantityIssued: qty(6)}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err), "issued above approved")

	issued, err := f.svc.SetStatus(context.Background(), v.ID, StatusChange{Status: StatusIssued})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(5), issued.Lines[0].QuantityIssued)
	assert.Equal(t, types.NewQuantity(5), f.stores.Stock(pens))
}

func TestService_ApprovedQuantityIsFixedAtApproval(t *testing.T) {
	f := newFixture()
	pens := f.stores.Add("PEN-001", 100, "3.50")
	v := f.voucher(t, map[id.ID]int64{pens: 4})
	lineID := v.Lines[0].ID

	_, err := f.svc.SetStatus(context.Background(), v.ID, StatusChange{
		Status: StatusApproved,
		Lines:  []LineChange{{LineID: lineID, QuantityApproved: qty(9)}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err), "approved above ordered")
	assert.Equal(t, StatusPending, f.repo.rows[v.ID].ApprovalStatus)

	_, err = f.svc.SetStatus(context.Background(), v.ID, StatusChange{Status: StatusApproved})
	require.NoError(t, err)

	_, err = f.svc.SetStatus(context.Background(), v.ID, StatusChange{
		Status: StatusIssued,
		Lines:  []LineChange{{LineID: lineID, QuantityApproved: qty(50), QuantityIssued: qty(50)}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err), "approval raised while issuing")
	assert.Equal(t, types.NewQuantity(100), f.stores.Stock(pens))
	assert.Equal(t, types.NewQuantity(4), f.repo.lines[v.ID][0].QuantityApproved)
	assert.Equal(t, StatusApproved, f.repo.rows[v.ID].ApprovalStatus)
	assert.Empty(t, f.stores.Entries)
}

func TestService_Issue_InsufficientStock(t *testing.T) {
	f := newFixture()
	pens := f.stores.Add("PEN-001", 2, "3.50")
	v := f.voucher(t, map[id.ID]int64{pens: 5})

	_, err := f.svc.SetStatus(context.Background(), v.ID, StatusChange{Status: StatusApproved})
	require.NoError(t, err)

	_, err = f.svc.SetStatus(context.Background(), v.ID, StatusChange{Status: StatusIssued})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, "PEN-001", appErr.Details["item"])
	assert.Equal(t, "5", appErr.Details["requested"])
	assert.Equal(t, "2", appErr.Details["available"])

	assert.Equal(t, types.NewQuantity(2), f.stores.Stock(pens))
	assert.Equal(t, StatusApproved, f.repo.rows[v.ID].ApprovalStatus)
}

func TestService_Transitions(t *testing.T) {
	tests := []struct {
		name  string
		path  []Status
		ok    bool
		audit int
	}{
		{"same status is a no-op", []Status{StatusPending}, true, 0},
		{"pending to rejected", []Status{StatusRejected}, true, 1},
		{"pending to issued", []Status{StatusIssued}, false, 0},
		{"rejected is terminal", []Status{StatusRejected, StatusApproved}, false, 1},
		{"issued is terminal", []Status{StatusApproved, StatusIssued, StatusPending}, false, 2},
		{"approved to rejected", []Status{StatusApproved, StatusRejected}, true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			pens := f.stores.Add("PEN-001", 10, "3.50")
			v := f.voucher(t, map[id.ID]int64{pens: 1})

			var err error
			for _, st := range tt.path {
				if _, err = f.svc.SetStatus(context.Background(), v.ID, StatusChange{Status: st}); err != nil {
					break
				}
			}
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))
			}
			assert.Len(t, f.audit.Entries, tt.audit)
		})
	}
}

func TestService_List_RejectsUnknownStatus(t *testing.T) {
	f := newFixture()
	_, err := f.svc.List(context.Background(), ListFilter{ListFilter: domain.DefaultListFilter(), Status: "shipped"})
	assert.True(t, apperror.IsValidation(err))
}
