package submission_repo

import (
	"confhub/internal/domain/submission/abstract"
	"confhub/internal/infrastructure/storage/postgres"
)

// AbstractRepo persists abstracts.
type AbstractRepo struct {
	*BaseRepo[*abstract.Abstract]
}

var _ abstract.Repository = (*AbstractRepo)(nil)

// NewAbstractRepo creates a new abstract repository.
func NewAbstractRepo(txManager *postgres.TxManager) *AbstractRepo {
	return &AbstractRepo{
		BaseRepo: NewBaseRepo(
			txManager,
			"abstracts",
			"abstract",
			postgres.ExtractDBColumns[abstract.Abstract](),
			[]string{"title", "presenting_author", "email", "reference"},
			func() *abstract.Abstract { return &abstract.Abstract{} },
		),
	}
}
