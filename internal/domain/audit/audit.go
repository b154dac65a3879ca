// Package audit defines the admin change trail recorded alongside status changes and deletes.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"confhub/internal/core/id"
)

// Action is the kind of audited operation.
type Action string

const (
	ActionCreate       Action = "create"
	ActionStatusChange Action = "status_change"
	ActionDelete       Action = "delete"
	ActionRecalculate  Action = "recalculate"
)

// Entry is one audit record as returned by the history endpoint.
type Entry struct {
	ID         id.ID           `db:"id" json:"id"`
	EntityType string          `db:"entity_type" json:"entity_type"`
	EntityID   id.ID           `db:"entity_id" json:"entity_id"`
	Action     Action          `db:"action" json:"action"`
	Actor      string          `db:"actor" json:"actor"`
	Changes    json.RawMessage `db:"changes" json:"changes"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Diff builds the {old, new} payload stored for a change.
func Diff(before, after map[string]any) map[string]any {
	return map[string]any{"old": before, "new": after}
}

// Recorder persists audit entries within the caller's transaction.
type Recorder interface {
	Record(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) error
	History(ctx context.Context, entityType string, entityID id.ID) ([]Entry, error)
}

// Discard is a Recorder that keeps nothing.
var Discard Recorder = discard{}

type discard struct{}

func (discard) Record(context.Context, string, id.ID, Action, map[string]any) error { return nil }

func (discard) History(context.Context, string, id.ID) ([]Entry, error) { return nil, nil }
