// Package auth authenticates the back-office administrator.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "confhub/internal/core/context"
	"confhub/internal/core/id"
)

// RoleAdmin is the only role issued.
const RoleAdmin = "admin"

// Audience marks tokens minted for the admin API.
const Audience = "confhub-admin"

type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
}

// DefaultJWTConfig issues 12h admin tokens.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:         secret,
		Issuer:         "confhub",
		AccessTokenTTL: 12 * time.Hour,
	}
}

// Claims are the registered claims plus the admin role.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// JWTService signs and verifies HS256 admin tokens.
type JWTService struct {
	config JWTConfig
	parser *jwt.Parser
	now    func() time.Time
}

func NewJWTService(config JWTConfig) *JWTService {
	s := &JWTService{config: config, now: time.Now}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(config.Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	return s
}

// GenerateAccessToken signs a token for username and returns its expiry.
func (s *JWTService) GenerateAccessToken(username string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.New().String(),
			Issuer:    s.config.Issuer,
			Subject:   username,
			Audience:  jwt.ClaimStrings{Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: RoleAdmin,
	})
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken verifies signature, issuer, audience, expiry and role.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.AdminContext, error) {
	var claims Claims
	_, err := s.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if claims.Role != RoleAdmin {
		return nil, fmt.Errorf("unexpected role %q", claims.Role)
	}

	return &appctx.AdminContext{
		Username:  claims.Subject,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
