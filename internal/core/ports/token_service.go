package ports

import "github.com/stackpeak/account-system/internal/core/domain"

// TokenService issues and verifies signed, time-bounded identity tokens.
type TokenService interface {
	// Issue signs a token embedding the identity claims plus issued-at and
	// expiry. Fails with a configuration error when no signing secret is set.
	Issue(identity domain.AuthenticatedIdentity) (string, error)
	// Verify validates signature and expiry and returns the decoded identity.
	// Every failure, including missing claim fields, carries the
	// unauthorized kind.
	Verify(token string) (domain.AuthenticatedIdentity, error)
}

// PasswordHasher is a one-way hash + verify pair for credentials.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify never fails on mismatch; it reports false.
	Verify(plaintext, digest string) bool
}
