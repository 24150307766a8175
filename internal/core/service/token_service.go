package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stackpeak/account-system/internal/core/domain"
)

// JWTTokenService issues and verifies HS256-signed identity tokens.
type JWTTokenService struct {
	secret string
	ttl    time.Duration
}

func NewJWTTokenService(secret string, ttl time.Duration) *JWTTokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTTokenService{secret: secret, ttl: ttl}
}

// Issue signs a token embedding the identity claims, issued-at, and expiry.
func (s *JWTTokenService) Issue(identity domain.AuthenticatedIdentity) (string, error) {
	if s.secret == "" {
		return "", domain.Configuration("token signing secret is not configured")
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"userId":   identity.UserID,
		"tenantId": identity.TenantID,
		"role":     identity.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(s.ttl).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.secret))
	if err != nil {
		return "", domain.Internal("sign token", err)
	}
	return signed, nil
}

// Verify checks signature and expiry, then validates that the identity
// claims are present non-empty strings. Every missing field is reported in
// one message rather than just the first.
func (s *JWTTokenService) Verify(token string) (domain.AuthenticatedIdentity, error) {
	if s.secret == "" {
		return domain.AuthenticatedIdentity{}, domain.Configuration("token signing secret is not configured")
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.AuthenticatedIdentity{}, domain.Unauthorized("token expired")
		}
		return domain.AuthenticatedIdentity{}, domain.Unauthorized("invalid token")
	}
	if !parsed.Valid {
		return domain.AuthenticatedIdentity{}, domain.Unauthorized("invalid token")
	}

	identity := domain.AuthenticatedIdentity{
		UserID:   stringClaim(claims, "userId"),
		TenantID: stringClaim(claims, "tenantId"),
		Role:     stringClaim(claims, "role"),
	}

	var missing []string
	if identity.UserID == "" {
		missing = append(missing, "userId")
	}
	if identity.TenantID == "" {
		missing = append(missing, "tenantId")
	}
	if identity.Role == "" {
		missing = append(missing, "role")
	}
	if len(missing) > 0 {
		return domain.AuthenticatedIdentity{}, domain.Unauthorized(
			fmt.Sprintf("malformed token: missing claims: %s", strings.Join(missing, ", ")))
	}

	return identity, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}
