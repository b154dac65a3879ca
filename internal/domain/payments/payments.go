// Package payments merges registration and sponsorship rows into one payment view.
// The view is computed per request and never stored.
package payments

import (
	"context"
	"sort"
	"strings"
	"time"

	"confhub/internal/core/apperror"
	"confhub/internal/core/id"
	"confhub/internal/core/types"
	"confhub/internal/domain/pricing"
	"confhub/internal/domain/submission"
)

// Source identifies the table a payment comes from.
type Source string

const (
	SourceRegistration Source = "registration"
	SourceSponsorship  Source = "sponsorship"
)

// Row is a payment as read from storage. Amount is nil for rows written
// before amounts were captured.
type Row struct {
	Source           Source       `db:"source"`
	ID               id.ID        `db:"id"`
	Reference        string       `db:"reference"`
	Name             string       `db:"name"`
	Email            string       `db:"email"`
	Organization     string       `db:"organization"`
	Category         string       `db:"category"`
	Amount           *types.Money `db:"amount"`
	Currency         string       `db:"currency"`
	Status           string       `db:"status"`
	PaymentProofPath string       `db:"payment_proof_path"`
	CreatedAt        time.Time    `db:"created_at"`
}

// Record is one line of the payment view.
type Record struct {
	Source       Source      `json:"source"`
	ID           id.ID       `json:"id"`
	Reference    string      `json:"reference"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Organization string      `json:"organization"`
	Category     string      `json:"category"`
	Amount       types.Money `json:"amount"`
	Currency     string      `json:"currency"`
	Status       string      `json:"status"`
	PaymentProof bool        `json:"payment_proof"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Totals sums amounts by status.
type Totals struct {
	All      types.Money `json:"all"`
	Pending  types.Money `json:"pending"`
	Approved types.Money `json:"approved"`
	Rejected types.Money `json:"rejected"`
}

// View is the filtered, sorted payment list.
type View struct {
	Items      []Record `json:"items"`
	TotalCount int      `json:"totalCount"`
	Totals     Totals   `json:"totals"`
}

// Filter narrows the view. Sort is a field name with an optional "-" prefix.
type Filter struct {
	Source   Source
	Status   string
	Category string
	Search   string
	From     *time.Time
	To       *time.Time
	Sort     string
}

// DefaultSort is newest first.
const DefaultSort = "-created_at"

var sorters = map[string]func(a, b *Record) int{
	"created_at": func(a, b *Record) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"amount":     func(a, b *Record) int { return a.Amount.Cmp(b.Amount) },
	"name":       func(a, b *Record) int { return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) },
	"status":     func(a, b *Record) int { return strings.Compare(a.Status, b.Status) },
	"source":     func(a, b *Record) int { return strings.Compare(string(a.Source), string(b.Source)) },
}

// Validate checks the enumerated filter values.
func (f Filter) Validate() error {
	if f.Source != "" && f.Source != SourceRegistration && f.Source != SourceSponsorship {
		return apperror.NewFieldError("unknown source", "source", "must be registration or sponsorship")
	}
	if _, ok := sorters[strings.TrimPrefix(f.sortKey(), "-")]; !ok {
		return apperror.NewFieldError("unknown sort field", "sort", "must be one of created_at, amount, name, status, source")
	}
	return nil
}

func (f Filter) sortKey() string {
	if f.Sort == "" {
		return DefaultSort
	}
	return f.Sort
}

func (f Filter) match(r *Record) bool {
	if f.Source != "" && r.Source != f.Source {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.From != nil && r.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && r.CreatedAt.After(*f.To) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		hay := strings.ToLower(r.Name + "\x00" + r.Email + "\x00" + r.Reference + "\x00" + r.Organization)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

// Reader loads the raw payment rows of both sources.
type Reader interface {
	PaymentRows(ctx context.Context) ([]Row, error)
}

// Service builds payment views.
type Service struct {
	reader Reader
	prices pricing.Prices
}

// NewService creates a payment view service.
func NewService(reader Reader, prices pricing.Prices) *Service {
	return &Service{reader: reader, prices: prices}
}

// View loads, filters, sorts and totals the payments.
func (s *Service) View(ctx context.Context, f Filter) (*View, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.reader.PaymentRows(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := s.record(row)
		if f.match(&rec) {
			items = append(items, rec)
		}
	}

	key := f.sortKey()
	desc := strings.HasPrefix(key, "-")
	cmp := sorters[strings.TrimPrefix(key, "-")]
	sort.SliceStable(items, func(i, j int) bool {
		c := cmp(&items[i], &items[j])
		if desc {
			return c > 0
		}
		return c < 0
	})

	return &View{Items: items, TotalCount: len(items), Totals: Sum(items)}, nil
}

// record resolves the amount: the captured one, else the live price.
func (s *Service) record(row Row) Record {
	amount := types.Zero()
	if row.Amount != nil {
		amount = *row.Amount
	} else {
		table := s.prices.Registration
		if row.Source == SourceSponsorship {
			table = s.prices.Sponsorship
		}
		if price, ok := table.Lookup(row.Category); ok {
			amount = price
		}
	}
	currency := row.Currency
	if currency == "" {
		currency = pricing.Currency
	}
	return Record{
		Source:       row.Source,
		ID:           row.ID,
		Reference:    row.Reference,
		Name:         row.Name,
		Email:        row.Email,
		Organization: row.Organization,
		Category:     row.Category,
		Amount:       amount,
		Currency:     currency,
		Status:       row.Status,
		PaymentProof: row.PaymentProofPath != "",
		CreatedAt:    row.CreatedAt,
	}
}

// Sum totals records by status.
func Sum(items []Record) Totals {
	t := Totals{All: types.Zero(), Pending: types.Zero(), Approved: types.Zero(), Rejected: types.Zero()}
	for _, r := range items {
		t.All = t.All.Add(r.Amount)
		switch r.Status {
		case string(submission.StatusPending):
			t.Pending = t.Pending.Add(r.Amount)
		case string(submission.StatusApproved):
			t.Approved = t.Approved.Add(r.Amount)
		case string(submission.StatusRejected):
			t.Rejected = t.Rejected.Add(r.Amount)
		}
	}
	return t
}
