package submission

// Document names used in download URLs and e-mail links.
const (
	DocPaymentProof  = "payment-proof"
	DocPassportPhoto = "passport-photo"
	DocAbstract      = "abstract"
)

// Documents builds a document map, skipping empty paths.
func Documents(pairs ...string) map[string]string {
	docs := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			docs[pairs[i]] = pairs[i+1]
		}
	}
	return docs
}

// OrgContact is the contact block of sponsorship and exhibitor applications.
type OrgContact struct {
	OrganizationName string `db:"organization_name" json:"organization_name"`
	ContactPerson    string `db:"contact_person" json:"contact_person"`
	Email            string `db:"email" json:"email"`
	Phone            string `db:"phone" json:"phone"`
	Website          string `db:"website" json:"website"`
	Address          string `db:"address" json:"address"`
}

// Validate checks the required contact fields and the e-mail format.
func (c *OrgContact) Validate() error {
	if err := RequireAll(
		Field{"organization_name", c.OrganizationName},
		Field{"contact_person", c.ContactPerson},
		Field{"email", c.Email},
		Field{"phone", c.Phone},
	); err != nil {
		return err
	}
	return CheckEmail("email", c.Email)
}
