// Package registration provides conference registrations.
package registration

import (
	"context"

	"confhub/internal/core/types"
	"confhub/internal/domain/notification"
	"confhub/internal/domain/pricing"
	"confhub/internal/domain/submission"
)

// Registration is an attendee registration with its payment evidence.
type Registration struct {
	submission.Base
	submission.Reviewed

	FullName    string `db:"full_name" json:"full_name"`
	Email       string `db:"email" json:"email"`
	Phone       string `db:"phone" json:"phone"`
	Institution string `db:"institution" json:"institution"`
	Position    string `db:"position" json:"position"`
	Country     string `db:"country" json:"country"`
	City        string `db:"city" json:"city"`

	RegistrationType string `db:"registration_type" json:"registration_type"`

	// Amount is the fee captured at submission. Nil only on rows imported before amounts were stored.
	Amount   *types.Money `db:"amount" json:"amount"`
	Currency string       `db:"currency" json:"currency"`

	PaymentProofPath  string `db:"payment_proof_path" json:"payment_proof_path"`
	PassportPhotoPath string `db:"passport_photo_path" json:"passport_photo_path"`
}

// New creates a pending registration.
func New() *Registration {
	return &Registration{
		Base:     submission.NewBase(),
		Reviewed: submission.Reviewed{Status: submission.StatusPending},
		Currency: pricing.Currency,
	}
}

// Validate implements entity.Validatable.
func (r *Registration) Validate(_ context.Context) error {
	if err := submission.RequireAll(
		submission.Field{Name: "full_name", Value: r.FullName},
		submission.Field{Name: "email", Value: r.Email},
		submission.Field{Name: "phone", Value: r.Phone},
		submission.Field{Name: "institution", Value: r.Institution},
		submission.Field{Name: "country", Value: r.Country},
		submission.Field{Name: "registration_type", Value: r.RegistrationType},
		submission.Field{Name: "payment_proof", Value: r.PaymentProofPath},
		submission.Field{Name: "passport_photo", Value: r.PassportPhotoPath},
	); err != nil {
		return err
	}
	return submission.CheckEmail("email", r.Email)
}

func (r *Registration) Recipient() notification.Recipient {
	return notification.Recipient{Email: r.Email, Name: r.FullName}
}

func (r *Registration) Documents() map[string]string {
	return submission.Documents(
		submission.DocPaymentProof, r.PaymentProofPath,
		submission.DocPassportPhoto, r.PassportPhotoPath,
	)
}
