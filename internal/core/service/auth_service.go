package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stackpeak/account-system/internal/core/domain"
	"github.com/stackpeak/account-system/internal/core/ports"
)

// AuthService implements login and the authorization engine.
type AuthService struct {
	users   ports.UserRepository
	tokens  ports.TokenService
	hasher  ports.PasswordHasher
	limiter ports.LoginLimiter
	log     zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	tokens ports.TokenService,
	hasher ports.PasswordHasher,
	limiter ports.LoginLimiter,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{users: users, tokens: tokens, hasher: hasher, limiter: limiter, log: log}
}

// Login verifies credentials and returns a signed token whose claims mirror
// the stored user record. Unknown email, wrong password, and terminated
// accounts all collapse to the same message so login does not leak which
// accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", domain.Unauthorized("invalid credentials")
	}

	blocked, err := s.limiter.TooManyAttempts(ctx, email)
	if err != nil {
		// The limiter is advisory; a broken limiter must not lock everyone out.
		s.log.Warn().Err(err).Msg("login limiter check failed, proceeding")
	} else if blocked {
		s.log.Info().Str("email", email).Msg("login throttled")
		return "", domain.Unauthorized("too many failed login attempts, try again later")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.recordFailure(ctx, email)
			return "", domain.Unauthorized("invalid credentials")
		}
		return "", err
	}

	if user.IsTerminated || !s.hasher.Verify(password, user.PasswordHash) {
		s.recordFailure(ctx, email)
		return "", domain.Unauthorized("invalid credentials")
	}

	token, err := s.tokens.Issue(domain.AuthenticatedIdentity{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Role:     user.Role,
	})
	if err != nil {
		return "", err
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("login limiter reset failed")
	}
	s.log.Info().Str("user_id", user.ID).Str("tenant_id", user.TenantID).Msg("login succeeded")
	return token, nil
}

// Authorize re-derives the allow/deny decision from current stored state.
// The role baked into the token is only compared against the fresh record;
// the permission lookup always uses the stored role, bounding the blast
// radius of a role downgrade to one check per stale token use.
func (s *AuthService) Authorize(ctx context.Context, identity domain.AuthenticatedIdentity, requiredPermission string) error {
	user, err := s.users.FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Unauthorized("account no longer exists")
		}
		return err
	}

	if user.IsTerminated {
		return domain.Unauthorized("account terminated")
	}
	if user.Role != identity.Role {
		return domain.Unauthorized("role changed, re-authenticate")
	}

	allowed, err := domain.RoleHasPermission(user.Role, requiredPermission)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.Unauthorized(fmt.Sprintf("missing permission: %s", requiredPermission))
	}
	return nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if err := s.limiter.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("login limiter record failed")
	}
}
