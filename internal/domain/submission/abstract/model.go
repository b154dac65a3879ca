// Package abstract provides abstract submissions for the scientific programme.
package abstract

import (
	"context"

	"confhub/internal/domain/notification"
	"confhub/internal/domain/submission"
)

// Categories accepted by the programme committee.
var Categories = []string{"research", "case-study", "policy", "poster"}

// Abstract is a submitted abstract and its manuscript file.
type Abstract struct {
	submission.Base
	submission.Reviewed

	Title            string `db:"title" json:"title"`
	PresentingAuthor string `db:"presenting_author" json:"presenting_author"`
	CoAuthors        string `db:"co_authors" json:"co_authors"`
	Email            string `db:"email" json:"email"`
	Phone            string `db:"phone" json:"phone"`
	Institution      string `db:"institution" json:"institution"`
	Country          string `db:"country" json:"country"`
	Category         string `db:"category" json:"category"`
	Keywords         string `db:"keywords" json:"keywords"`
	Summary          string `db:"summary" json:"summary"`
	FilePath         string `db:"file_path" json:"file_path"`
}

// New creates an abstract in the submitted state.
func New() *Abstract {
	return &Abstract{
		Base:     submission.NewBase(),
		Reviewed: submission.Reviewed{Status: submission.StatusSubmitted},
	}
}

// Validate implements entity.Validatable.
func (a *Abstract) Validate(_ context.Context) error {
	return submission.FirstError(
		submission.RequireAll(
			submission.Field{Name: "title", Value: a.Title},
			submission.Field{Name: "presenting_author", Value: a.PresentingAuthor},
			submission.Field{Name: "email", Value: a.Email},
			submission.Field{Name: "institution", Value: a.Institution},
			submission.Field{Name: "country", Value: a.Country},
			submission.Field{Name: "category", Value: a.Category},
			submission.Field{Name: "summary", Value: a.Summary},
			submission.Field{Name: "abstract_file", Value: a.FilePath},
		),
		submission.CheckEmail("email", a.Email),
		submission.CheckOption("category", a.Category, Categories),
	)
}

func (a *Abstract) Recipient() notification.Recipient {
	return notification.Recipient{Email: a.Email, Name: a.PresentingAuthor}
}

func (a *Abstract) Documents() map[string]string {
	return submission.Documents(submission.DocAbstract, a.FilePath)
}
