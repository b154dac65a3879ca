package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"confhub/internal/core/apperror"
	appctx "confhub/internal/core/context"
	"confhub/pkg/logger"
)

// Credentials is a login attempt.
type Credentials struct {
	Username string
	Password string
}

// Token is issued on a successful login.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
}

// Service checks the single admin credential.
type Service struct {
	username     string
	passwordHash []byte
	jwtService   *JWTService
}

// NewService creates an auth service. A plain password is hashed once here
// when no hash is configured.
func NewService(username, passwordHash, password string, jwtService *JWTService) (*Service, error) {
	hash := []byte(passwordHash)
	if len(hash) == 0 {
		if password == "" {
			return nil, fmt.Errorf("admin password is not configured")
		}
		var err error
		if hash, err = HashPassword(password); err != nil {
			return nil, err
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}

	return &Service{
		username:     username,
		passwordHash: hash,
		jwtService:   jwtService,
	}, nil
}

// HashPassword returns a bcrypt hash at the default cost.
func HashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// Login verifies the credential and issues a token.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Token, error) {
	userOK := subtle.ConstantTimeCompare([]byte(creds.Username), []byte(s.username)) == 1
	// The hash is always compared so a wrong username costs the same.
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(creds.Password))
	if !userOK || passErr != nil {
		logger.Warn(ctx, "admin login failed", "username", creds.Username)
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(s.username)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	logger.Info(ctx, "admin logged in", "username", s.username)
	return &Token{Token: token, ExpiresAt: expiresAt, Username: s.username}, nil
}

// Authenticate validates a bearer token.
func (s *Service) Authenticate(tokenString string) (*appctx.AdminContext, error) {
	admin, err := s.jwtService.ValidateToken(tokenString)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid or expired token").WithCause(err)
	}
	return admin, nil
}
