package submission

import (
	"confhub/internal/domain/notification"
)

// Status is the review state of a submission.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// PaymentStatus is the second review axis of a pre-conference meeting.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Review status sets per entity.
var (
	PendingReview   = []Status{StatusPending, StatusApproved, StatusRejected}
	SubmittedReview = []Status{StatusSubmitted, StatusApproved, StatusRejected}
	PaymentStates   = []PaymentStatus{PaymentPending, PaymentPaid, PaymentCancelled}
)

func contains[S ~string](set []S, v S) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s belongs to set.
func ValidStatus(set []Status, s Status) bool { return contains(set, s) }

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s PaymentStatus) bool { return contains(PaymentStates, s) }

// StatusEvent returns the e-mail sent when a record moves to s.
// Moving back to the initial status sends nothing.
func StatusEvent(s Status) (notification.Event, bool) {
	switch s {
	case StatusApproved:
		return notification.EventApproved, true
	case StatusRejected:
		return notification.EventRejected, true
	}
	return "", false
}

// PaymentEvent returns the e-mail sent when a payment moves to s.
func PaymentEvent(s PaymentStatus) (notification.Event, bool) {
	switch s {
	case PaymentPaid:
		return notification.EventPaid, true
	case PaymentCancelled:
		return notification.EventCancelled, true
	}
	return "", false
}
