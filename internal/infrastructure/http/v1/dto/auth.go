package dto

import (
	"time"

	appctx "confhub/internal/core/context"
	"confhub/internal/domain/auth"
)

// LoginRequest is the admin sign-in form.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts the request to domain credentials.
func (r LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{Username: r.Username, Password: r.Password}
}

// MeResponse is the identity carried by the token.
type MeResponse struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FromAdmin builds MeResponse.
func FromAdmin(a *appctx.AdminContext) MeResponse {
	return MeResponse{Username: a.Username, Role: a.Role, ExpiresAt: a.ExpiresAt}
}
