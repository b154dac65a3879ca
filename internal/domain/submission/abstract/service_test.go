package abstract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confhub/internal/core/apperror"
	"confhub/internal/domain/notification"
	"confhub/internal/domain/submission"
	"confhub/internal/domain/submission/submissiontest"
)

func validAbstract() *Abstract {
	a := New()
	a.Title = "Malaria vector control in peri-urban settings"
	a.PresentingAuthor = "Grace Hopper"
	a.Email = "grace@example.org"
	a.Institution = "Navy Research Lab"
	a.Country = "US"
	a.Category = "research"
	a.Summary = "We report..."
	a.FilePath = "uploads/abstracts/1700000000000-abstract.docx"
	return a
}

func TestService_CreateAndReview(t *testing.T) {
	h := submissiontest.NewHarness()
	repo := submissiontest.NewMemoryRepo[*Abstract]()
	svc := NewService(submissiontest.Config[*Abstract](h, repo))
	ctx := context.Background()

	a := validAbstract()
	require.NoError(t, svc.Create(ctx, a))
	assert.Equal(t, submission.StatusSubmitted, a.Status)
	assert.Regexp(t, `^ABS-\d{4}-00001$`, a.Reference)

	// pending belongs to the other entities, not to abstracts
	_, err := svc.SetStatus(ctx, a.ID, submission.StatusPending)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.SetStatus(ctx, a.ID, submission.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, []notification.Event{notification.EventReceived, notification.EventRejected}, h.Outbox.Events())
	assert.Equal(t, "Grace Hopper", h.Outbox.Messages[1].Name)
	assert.Equal(t, []string{submission.DocAbstract}, h.Outbox.Messages[1].Documents)
}

func TestAbstract_Validate(t *testing.T) {
	a := validAbstract()
	a.Category = "keynote"
	assert.True(t, apperror.IsValidation(a.Validate(context.Background())))

	a = validAbstract()
	a.FilePath = ""
	err := a.Validate(context.Background())
	require.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Contains(t, appErr.Details["fields"], "abstract_file")
}

func TestService_Create_MissingFields(t *testing.T) {
	fields := map[string]func(a *Abstract){
		"title":             func(a *Abstract) { a.Title = "" },
		"presenting_author": func(a *Abstract) { a.PresentingAuthor = "" },
		"email":             func(a *Abstract) { a.Email = "" },
		"institution":       func(a *Abstract) { a.Institution = "  " },
		"country":           func(a *Abstract) { a.Country = "" },
		"category":          func(a *Abstract) { a.Category = "" },
		"summary":           func(a *Abstract) { a.Summary = "" },
		"abstract_file":     func(a *Abstract) { a.FilePath = "" },
	}

	for field, blank := range fields {
		t.Run(field, func(t *testing.T) {
			h := submissiontest.NewHarness()
			repo := submissiontest.NewMemoryRepo[*Abstract]()
			svc := NewService(submissiontest.Config[*Abstract](h, repo))

			a := validAbstract()
			blank(a)

			err := svc.Create(context.Background(), a)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
			appErr, _ := apperror.AsAppError(err)
			assert.Contains(t, appErr.Details["fields"], field)
			assert.Zero(t, repo.Len())
			assert.Empty(t, h.Outbox.Messages)
		})
	}
}
