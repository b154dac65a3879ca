package dto

import (
	"time"

	"confhub/internal/domain/payments"
)

// PaymentQuery is the payment view query string. Dates are inclusive days.
type PaymentQuery struct {
	Source   string `form:"source" binding:"omitempty,oneof=registration sponsorship"`
	Status   string `form:"status"`
	Category string `form:"category"`
	Search   string `form:"search"`
	From     string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To       string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Sort     string `form:"sort"`
}

// ToFilter converts the query. To covers the whole day.
func (q PaymentQuery) ToFilter() payments.Filter {
	f := payments.Filter{
		Source:   payments.Source(q.Source),
		Status:   q.Status,
		Category: q.Category,
		Search:   q.Search,
		Sort:     q.Sort,
		From:     parseDate(q.From),
	}
	if to := parseDate(q.To); to != nil {
		end := to.Add(24*time.Hour - time.Nanosecond)
		f.To = &end
	}
	return f
}
