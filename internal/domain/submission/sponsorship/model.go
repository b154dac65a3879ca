// Package sponsorship provides sponsorship applications.
package sponsorship

import (
	"context"

	"confhub/internal/core/types"
	"confhub/internal/domain/notification"
	"confhub/internal/domain/pricing"
	"confhub/internal/domain/submission"
)

// Sponsorship is an organization's application for a sponsorship package.
type Sponsorship struct {
	submission.Base
	submission.Reviewed
	submission.OrgContact

	SelectedPackage  string       `db:"selected_package" json:"selected_package"`
	Amount           *types.Money `db:"amount" json:"amount"`
	Currency         string       `db:"currency" json:"currency"`
	PaymentProofPath string       `db:"payment_proof_path" json:"payment_proof_path"`
}

// New creates a pending application.
func New() *Sponsorship {
	return &Sponsorship{
		Base:     submission.NewBase(),
		Reviewed: submission.Reviewed{Status: submission.StatusPending},
		Currency: pricing.Currency,
	}
}

// Validate implements entity.Validatable.
func (s *Sponsorship) Validate(_ context.Context) error {
	return submission.FirstError(
		s.OrgContact.Validate(),
		submission.RequireAll(submission.Field{Name: "selected_package", Value: s.SelectedPackage}),
	)
}

func (s *Sponsorship) Recipient() notification.Recipient {
	return notification.Recipient{Email: s.Email, Name: s.ContactPerson}
}

func (s *Sponsorship) Documents() map[string]string {
	return submission.Documents(submission.DocPaymentProof, s.PaymentProofPath)
}
