// Package context carries request-scoped values: the trace ids of an HTTP
// request and the admin who made it.
package context

import (
	"context"
	"time"
)

// AdminContext describes the authenticated back-office operator.
type AdminContext struct {
	Username  string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

func WithAdmin(ctx context.Context, admin *AdminContext) context.Context {
	return context.WithValue(ctx, adminKey, admin)
}

// GetAdmin returns nil for unauthenticated calls.
func GetAdmin(ctx context.Context) *AdminContext {
	a, _ := ctx.Value(adminKey).(*AdminContext)
	return a
}

// GetActor returns the admin username for audit trails, or "system" when
// the call did not come through an authenticated request (worker jobs).
func GetActor(ctx context.Context) string {
	if a := GetAdmin(ctx); a != nil && a.Username != "" {
		return a.Username
	}
	return "system"
}
