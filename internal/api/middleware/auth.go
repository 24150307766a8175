package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stackpeak/account-system/internal/core/domain"
	"github.com/stackpeak/account-system/internal/core/ports"
)

// IdentityKey is the echo context key under which Auth stores the
// authenticated identity.
const IdentityKey = "identity"

// Auth extracts the bearer token, verifies it through the token service,
// and injects the resulting identity into the request context. Verification
// failures propagate untouched so the central error handler renders them.
func Auth(tokens ports.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return domain.Unauthorized("missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return domain.Unauthorized("invalid authorization header")
			}

			identity, err := tokens.Verify(parts[1])
			if err != nil {
				return err
			}

			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}

// Identity returns the identity injected by Auth, reporting false when the
// middleware did not run.
func Identity(c echo.Context) (domain.AuthenticatedIdentity, bool) {
	identity, ok := c.Get(IdentityKey).(domain.AuthenticatedIdentity)
	return identity, ok
}
