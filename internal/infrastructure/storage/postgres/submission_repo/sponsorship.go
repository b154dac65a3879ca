package submission_repo

import (
	"confhub/internal/domain/submission/sponsorship"
	"confhub/internal/infrastructure/storage/postgres"
)

// SponsorshipRepo persists sponsorships.
type SponsorshipRepo struct {
	*BaseRepo[*sponsorship.Sponsorship]
}

var _ sponsorship.Repository = (*SponsorshipRepo)(nil)

// NewSponsorshipRepo creates a new sponsorship repository.
func NewSponsorshipRepo(txManager *postgres.TxManager) *SponsorshipRepo {
	return &SponsorshipRepo{
		BaseRepo: NewBaseRepo(
			txManager,
			"sponsorships",
			"sponsorship",
			postgres.ExtractDBColumns[sponsorship.Sponsorship](),
			[]string{"organization_name", "contact_person", "email", "reference"},
			func() *sponsorship.Sponsorship { return &sponsorship.Sponsorship{} },
		),
	}
}
