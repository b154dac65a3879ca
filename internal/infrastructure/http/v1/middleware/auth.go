package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"confhub/internal/core/apperror"
	appctx "confhub/internal/core/context"
)

// TokenValidator is satisfied by auth.JWTService.
type TokenValidator interface {
	ValidateToken(tokenString string) (*appctx.AdminContext, error)
}

// Auth rejects requests without a valid admin bearer token and stores the
// admin on the request context for handlers and the audit trail.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		admin, verr := validator.ValidateToken(token)
		if verr != nil {
			_ = c.Error(apperror.NewUnauthorized("invalid token").WithCause(verr))
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(appctx.WithAdmin(c.Request.Context(), admin))
		c.Next()
	}
}

func bearerToken(header string) (string, *apperror.AppError) {
	if header == "" {
		return "", apperror.NewUnauthorized("missing authorization header")
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", apperror.NewUnauthorized("invalid authorization header format")
	}
	return token, nil
}
