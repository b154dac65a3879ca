// Package preconference provides pre-conference meeting bookings.
// A meeting has two independent review axes: approval and payment.
package preconference

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"confhub/internal/core/apperror"
	"confhub/internal/core/types"
	"confhub/internal/domain/notification"
	"confhub/internal/domain/pricing"
	"confhub/internal/domain/submission"
)

const (
	MinAttendees = 1
	MaxAttendees = 200

	TimeLayout = "15:04"
	DateLayout = "2006-01-02"
)

// SessionTypes offered for pre-conference slots.
var SessionTypes = []string{"workshop", "symposium", "training", "side-meeting"}

var minHours = decimal.NewFromInt(3)

// Meeting is a booking for a pre-conference session.
type Meeting struct {
	submission.Base

	SessionTitle string `db:"session_title" json:"session_title"`
	Description  string `db:"description" json:"description"`
	SessionType  string `db:"session_type" json:"session_type"`

	OrganizerName  string `db:"organizer_name" json:"organizer_name"`
	OrganizerEmail string `db:"organizer_email" json:"organizer_email"`
	OrganizerPhone string `db:"organizer_phone" json:"organizer_phone"`
	Organization   string `db:"organization" json:"organization"`

	ExpectedAttendees int             `db:"expected_attendees" json:"expected_attendees"`
	MeetingDate       time.Time       `db:"meeting_date" json:"meeting_date"`
	StartTime         string          `db:"start_time" json:"start_time"`
	EndTime           string          `db:"end_time" json:"end_time"`
	DurationHours     decimal.Decimal `db:"duration_hours" json:"duration_hours"`

	Amount              types.Money `db:"amount" json:"amount"`
	Currency            string      `db:"currency" json:"currency"`
	SpecialRequirements string      `db:"special_requirements" json:"special_requirements"`

	ApprovalStatus submission.Status        `db:"approval_status" json:"approval_status"`
	PaymentStatus  submission.PaymentStatus `db:"payment_status" json:"payment_status"`
}

// New creates a booking pending on both axes.
func New() *Meeting {
	return &Meeting{
		Base:           submission.NewBase(),
		Currency:       pricing.Currency,
		ApprovalStatus: submission.StatusPending,
		PaymentStatus:  submission.PaymentPending,
	}
}

// Span returns the hours between start and end time.
func Span(start, end string) (decimal.Decimal, error) {
	s, err := time.Parse(TimeLayout, start)
	if err != nil {
		return decimal.Zero, fmt.Errorf("start_time must be HH:MM")
	}
	e, err := time.Parse(TimeLayout, end)
	if err != nil {
		return decimal.Zero, fmt.Errorf("end_time must be HH:MM")
	}
	minutes := int64(e.Sub(s) / time.Minute)
	return decimal.NewFromInt(minutes).Div(decimal.NewFromInt(60)).Round(2), nil
}

func fieldError(field, msg string) error {
	return apperror.NewFieldError(field+" "+msg, field, msg)
}

// Validate implements entity.Validatable.
func (m *Meeting) Validate(_ context.Context) error {
	if err := submission.RequireAll(
		submission.Field{Name: "session_title", Value: m.SessionTitle},
		submission.Field{Name: "session_type", Value: m.SessionType},
		submission.Field{Name: "organizer_name", Value: m.OrganizerName},
		submission.Field{Name: "organizer_email", Value: m.OrganizerEmail},
		submission.Field{Name: "organizer_phone", Value: m.OrganizerPhone},
		submission.Field{Name: "start_time", Value: m.StartTime},
		submission.Field{Name: "end_time", Value: m.EndTime},
	); err != nil {
		return err
	}
	if m.MeetingDate.IsZero() {
		return fieldError("meeting_date", "is required")
	}
	if err := submission.CheckEmail("organizer_email", m.OrganizerEmail); err != nil {
		return err
	}
	if err := submission.CheckOption("session_type", m.SessionType, SessionTypes); err != nil {
		return err
	}
	if m.ExpectedAttendees < MinAttendees || m.ExpectedAttendees > MaxAttendees {
		return fieldError("expected_attendees", fmt.Sprintf("must be between %d and %d", MinAttendees, MaxAttendees))
	}

	span, err := Span(m.StartTime, m.EndTime)
	if err != nil {
		return apperror.NewValidation(err.Error())
	}
	if !span.IsPositive() {
		return fieldError("end_time", "must be after start_time")
	}
	if m.DurationHours.LessThan(minHours) {
		return fieldError("duration_hours", "must be at least 3 hours")
	}
	if m.DurationHours.GreaterThan(span) {
		return fieldError("duration_hours", "must not exceed the time between start_time and end_time")
	}
	return nil
}

func (m *Meeting) Recipient() notification.Recipient {
	return notification.Recipient{Email: m.OrganizerEmail, Name: m.OrganizerName}
}

func (m *Meeting) Documents() map[string]string { return nil }

// NotificationData feeds the session details into e-mails.
func (m *Meeting) NotificationData() map[string]string {
	return map[string]string{
		"session_title": m.SessionTitle,
		"meeting_date":  m.MeetingDate.Format(DateLayout),
		"start_time":    m.StartTime,
		"end_time":      m.EndTime,
		"amount":        m.Amount.StringFixed(2),
	}
}
