package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"

	"confhub/internal/domain/notification"
)

type recordingSender struct {
	sent []notification.Email
	err  error
}

func (s *recordingSender) Send(_ context.Context, email notification.Email) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, email)
	return nil
}

func newRenderer(t *testing.T) *notification.Renderer {
	t.Helper()
	r, err := notification.NewRenderer(notification.Links{SiteURL: "https://conf.example.org", APIURL: "https://api.example.org"})
	require.NoError(t, err)
	return r
}

func TestDispatcher_Handle(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(newRenderer(t), sender)

	err := d.Handle(context.Background(), notification.Message{
		Kind:      notification.KindRegistration,
		Event:     notification.EventApproved,
		To:        "amina@example.org",
		Name:      "Amina Phiri",
		Reference: "REG-2026-00001",
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "amina@example.org", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].HTMLBody, "REG-2026-00001")
}

func TestDispatcher_Errors(t *testing.T) {
	sender := &recordingSender{err: errors.New("connection refused")}
	d := NewDispatcher(newRenderer(t), sender)

	msg := notification.Message{
		Kind:  notification.KindAbstract,
		Event: notification.EventReceived,
		To:    "a@example.org",
	}
	assert.ErrorContains(t, d.Handle(context.Background(), msg), "connection refused")

	msg.To = ""
	assert.Error(t, d.Handle(context.Background(), msg))
}

func TestSMTPSender_Message(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{
		Host:     "smtp.example.org",
		Port:     587,
		User:     "noreply@example.org",
		FromName: "Conference Secretariat",
	})
	assert.Equal(t, "noreply@example.org", s.cfg.FromEmail)

	msg, err := s.message(notification.Email{
		To:       "amina@example.org",
		Subject:  "Your registration has been approved",
		TextBody: "hello",
		HTMLBody: "<p>hello</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"<amina@example.org>"}, msg.GetToString())
	assert.Equal(t, []string{"Your registration has been approved"}, msg.GetGenHeader(gomail.HeaderSubject))

	_, err = s.message(notification.Email{To: "not an address"})
	assert.Error(t, err)
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{}.Send(context.Background(), notification.Email{To: "a@example.org"}))
}
