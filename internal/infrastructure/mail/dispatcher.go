package mail

import (
	"context"
	"fmt"

	"confhub/internal/domain/notification"
	"confhub/pkg/logger"
)

// Dispatcher renders outbox messages and hands them to a Sender.
// It is the handler of the outbox relay.
type Dispatcher struct {
	renderer *notification.Renderer
	sender   Sender
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(renderer *notification.Renderer, sender Sender) *Dispatcher {
	return &Dispatcher{renderer: renderer, sender: sender}
}

// Handle renders and sends msg. A returned error makes the relay retry.
func (d *Dispatcher) Handle(ctx context.Context, msg notification.Message) error {
	email, err := d.renderer.Render(msg)
	if err != nil {
		return fmt.Errorf("render %s/%s: %w", msg.Kind, msg.Event, err)
	}
	if err := d.sender.Send(ctx, email); err != nil {
		return err
	}
	logger.Debug(ctx, "mail sent",
		"kind", msg.Kind,
		"event", msg.Event,
		"reference", msg.Reference)
	return nil
}
