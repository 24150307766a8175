package ports

import (
	"context"

	"github.com/stackpeak/account-system/internal/core/domain"
)

// AuthService implements login and permission evaluation.
type AuthService interface {
	// Login verifies credentials and returns a signed token whose claims
	// mirror the stored user record.
	Login(ctx context.Context, email, password string) (string, error)

	// Authorize decides whether the identity may exercise requiredPermission.
	// The decision is re-derived from current stored state; the token's role
	// claim is only a hint.
	Authorize(ctx context.Context, identity domain.AuthenticatedIdentity, requiredPermission string) error
}

// LoginLimiter throttles failed login attempts per email.
type LoginLimiter interface {
	// TooManyAttempts reports whether the email has exhausted its window.
	TooManyAttempts(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}
