// Package notification builds the e-mails sent to submitters and the secretariat.
// Services enqueue Messages inside their transaction; the outbox relay renders and sends them later.
package notification

import (
	"context"
	"fmt"

	"confhub/internal/core/id"
)

// Kind identifies the submission type a message is about.
type Kind string

const (
	KindRegistration  Kind = "registration"
	KindAbstract      Kind = "abstract"
	KindSponsorship   Kind = "sponsorship"
	KindExhibitor     Kind = "exhibitor"
	KindPreconference Kind = "preconference"
)

var routePaths = map[Kind]string{
	KindRegistration:  "registrations",
	KindAbstract:      "abstracts",
	KindSponsorship:   "sponsorships",
	KindExhibitor:     "exhibitors",
	KindPreconference: "pre-conference",
}

// RoutePath is the admin API segment of the kind, as in
// /api/admin/files/registrations/:id/payment-proof.
func (k Kind) RoutePath() string {
	if p, ok := routePaths[k]; ok {
		return p
	}
	return string(k)
}

// Event selects the template.
type Event string

const (
	EventReceived  Event = "received"
	EventApproved  Event = "approved"
	EventRejected  Event = "rejected"
	EventPaid      Event = "paid"
	EventCancelled Event = "cancelled"

	// EventNewSubmission is the secretariat copy of an intake.
	EventNewSubmission Event = "new_submission"
)

// Message is the outbox payload. It carries data only; rendering happens at delivery.
type Message struct {
	Kind      Kind              `json:"kind"`
	Event     Event             `json:"event"`
	To        string            `json:"to"`
	Name      string            `json:"name"`
	Reference string            `json:"reference"`
	EntityID  string            `json:"entity_id,omitempty"`
	Documents []string          `json:"documents,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

// Validate checks the fields every template needs.
func (m Message) Validate() error {
	if m.To == "" {
		return fmt.Errorf("message %s/%s has no recipient", m.Kind, m.Event)
	}
	if m.Kind == "" || m.Event == "" {
		return fmt.Errorf("message to %s has no kind or event", m.To)
	}
	return nil
}

// Email is a rendered message ready for a mail sender.
type Email struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Outbox stores messages in the current transaction.
type Outbox interface {
	Enqueue(ctx context.Context, msg Message) error
}

// Recipient is the submitter a message goes to.
type Recipient struct {
	Email string
	Name  string
}

// Subject describes the record a notification is about.
type Subject struct {
	Kind      Kind
	EntityID  id.ID
	Reference string
	Recipient Recipient
	Documents []string
	Data      map[string]string
}

func (s Subject) message(event Event, to string) Message {
	return Message{
		Kind:      s.Kind,
		Event:     event,
		To:        to,
		Name:      s.Recipient.Name,
		Reference: s.Reference,
		EntityID:  s.EntityID.String(),
		Documents: s.Documents,
		Data:      s.Data,
	}
}

// Notifier turns domain events into outbox messages.
type Notifier struct {
	outbox      Outbox
	secretariat string
}

// NewNotifier creates a notifier. An empty secretariat address disables the intake copy.
func NewNotifier(outbox Outbox, secretariat string) *Notifier {
	return &Notifier{outbox: outbox, secretariat: secretariat}
}

// Received enqueues the submitter confirmation and the secretariat copy.
func (n *Notifier) Received(ctx context.Context, s Subject) error {
	if err := n.outbox.Enqueue(ctx, s.message(EventReceived, s.Recipient.Email)); err != nil {
		return fmt.Errorf("enqueue confirmation: %w", err)
	}
	if n.secretariat == "" {
		return nil
	}
	copyMsg := s.message(EventNewSubmission, n.secretariat)
	if copyMsg.Data == nil {
		copyMsg.Data = map[string]string{}
	}
	copyMsg.Data["submitter_email"] = s.Recipient.Email
	if err := n.outbox.Enqueue(ctx, copyMsg); err != nil {
		return fmt.Errorf("enqueue secretariat copy: %w", err)
	}
	return nil
}

// StatusChanged enqueues the status e-mail for event.
func (n *Notifier) StatusChanged(ctx context.Context, s Subject, event Event) error {
	if err := n.outbox.Enqueue(ctx, s.message(event, s.Recipient.Email)); err != nil {
		return fmt.Errorf("enqueue %s notification: %w", event, err)
	}
	return nil
}

// MemoryOutbox collects messages in memory for tests.
type MemoryOutbox struct {
	Messages []Message
}

// Enqueue implements Outbox.
func (o *MemoryOutbox) Enqueue(_ context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	o.Messages = append(o.Messages, msg)
	return nil
}

// Events returns the events enqueued so far in order.
func (o *MemoryOutbox) Events() []Event {
	events := make([]Event, len(o.Messages))
	for i, m := range o.Messages {
		events[i] = m.Event
	}
	return events
}
