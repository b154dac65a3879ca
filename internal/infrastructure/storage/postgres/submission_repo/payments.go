package submission_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"confhub/internal/domain/payments"
	"confhub/internal/infrastructure/storage/postgres"
)

// PaymentReader reads the payment columns of registrations and sponsorships in one query.
type PaymentReader struct {
	txManager *postgres.TxManager
}

var _ payments.Reader = (*PaymentReader)(nil)

// NewPaymentReader creates a new payment reader.
func NewPaymentReader(txManager *postgres.TxManager) *PaymentReader {
	return &PaymentReader{txManager: txManager}
}

// paymentRowsSQL builds the UNION ALL of both sources, aliased to payments.Row columns.
func paymentRowsSQL() (string, error) {
	registrations, _, err := squirrel.
		Select(
			"'registration' AS source", "id", "reference",
			"full_name AS name", "email", "institution AS organization",
			"registration_type AS category", "amount", "currency", "status",
			"payment_proof_path", "created_at",
		).
		From("registrations").
		ToSql()
	if err != nil {
		return "", err
	}

	sponsorships, _, err := squirrel.
		Select(
			"'sponsorship' AS source", "id", "reference",
			"contact_person AS name", "email", "organization_name AS organization",
			"selected_package AS category", "amount", "currency", "status",
			"payment_proof_path", "created_at",
		).
		From("sponsorships").
		ToSql()
	if err != nil {
		return "", err
	}

	return registrations + " UNION ALL " + sponsorships, nil
}

// PaymentRows implements payments.Reader.
func (r *PaymentReader) PaymentRows(ctx context.Context) ([]payments.Row, error) {
	sql, err := paymentRowsSQL()
	if err != nil {
		return nil, fmt.Errorf("build payments query: %w", err)
	}

	rows := []payments.Row{}
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql); err != nil {
		return nil, fmt.Errorf("read payments: %w", err)
	}
	return rows, nil
}
