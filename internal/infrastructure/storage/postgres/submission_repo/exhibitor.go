package submission_repo

import (
	"confhub/internal/domain/submission/exhibitor"
	"confhub/internal/infrastructure/storage/postgres"
)

// ExhibitorRepo persists exhibitors.
type ExhibitorRepo struct {
	*BaseRepo[*exhibitor.Exhibitor]
}

var _ exhibitor.Repository = (*ExhibitorRepo)(nil)

// NewExhibitorRepo creates a new exhibitor repository.
func NewExhibitorRepo(txManager *postgres.TxManager) *ExhibitorRepo {
	return &ExhibitorRepo{
		BaseRepo: NewBaseRepo(
			txManager,
			"exhibitors",
			"exhibitor",
			postgres.ExtractDBColumns[exhibitor.Exhibitor](),
			[]string{"organization_name", "contact_person", "email", "reference"},
			func() *exhibitor.Exhibitor { return &exhibitor.Exhibitor{} },
		),
	}
}
