// Package exhibitor provides exhibition booth applications.
package exhibitor

import (
	"context"

	"confhub/internal/core/types"
	"confhub/internal/domain/notification"
	"confhub/internal/domain/pricing"
	"confhub/internal/domain/submission"
)

// Exhibitor is an application for exhibition space.
type Exhibitor struct {
	submission.Base
	submission.Reviewed
	submission.OrgContact

	SelectedPackage     string       `db:"selected_package" json:"selected_package"`
	ProductsDescription string       `db:"products_description" json:"products_description"`
	Amount              *types.Money `db:"amount" json:"amount"`
	Currency            string       `db:"currency" json:"currency"`
	PaymentProofPath    string       `db:"payment_proof_path" json:"payment_proof_path"`
}

// New creates a pending application.
func New() *Exhibitor {
	return &Exhibitor{
		Base:     submission.NewBase(),
		Reviewed: submission.Reviewed{Status: submission.StatusPending},
		Currency: pricing.Currency,
	}
}

// Validate implements entity.Validatable.
func (e *Exhibitor) Validate(_ context.Context) error {
	return submission.FirstError(
		e.OrgContact.Validate(),
		submission.RequireAll(submission.Field{Name: "selected_package", Value: e.SelectedPackage}),
	)
}

func (e *Exhibitor) Recipient() notification.Recipient {
	return notification.Recipient{Email: e.Email, Name: e.ContactPerson}
}

func (e *Exhibitor) Documents() map[string]string {
	return submission.Documents(submission.DocPaymentProof, e.PaymentProofPath)
}
