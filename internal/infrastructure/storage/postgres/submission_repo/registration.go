package submission_repo

import (
	"confhub/internal/domain/submission/registration"
	"confhub/internal/infrastructure/storage/postgres"
)

// RegistrationRepo persists registrations.
type RegistrationRepo struct {
	*BaseRepo[*registration.Registration]
}

var _ registration.Repository = (*RegistrationRepo)(nil)

// NewRegistrationRepo creates a new registration repository.
func NewRegistrationRepo(txManager *postgres.TxManager) *RegistrationRepo {
	return &RegistrationRepo{
		BaseRepo: NewBaseRepo(
			txManager,
			"registrations",
			"registration",
			postgres.ExtractDBColumns[registration.Registration](),
			[]string{"full_name", "email", "reference", "institution"},
			func() *registration.Registration { return &registration.Registration{} },
		),
	}
}
