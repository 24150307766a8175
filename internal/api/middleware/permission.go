package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/stackpeak/account-system/internal/api/metrics"
	"github.com/stackpeak/account-system/internal/core/domain"
)

// Authorizer decides whether an identity may exercise a permission.
type Authorizer interface {
	Authorize(ctx context.Context, identity domain.AuthenticatedIdentity, requiredPermission string) error
}

// RequirePermission gates a route on a permission. The decision is
// re-derived from stored state on every request; the token's role claim is
// never trusted on its own.
func RequirePermission(authz Authorizer, permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := Identity(c)
			if !ok {
				return domain.Unauthorized("missing authentication claims")
			}

			if err := authz.Authorize(c.Request().Context(), identity, permission); err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					metrics.AuthzDenialsTotal.WithLabelValues(denialReason(err)).Inc()
				}
				return err
			}
			return next(c)
		}
	}
}

func denialReason(err error) string {
	switch msg := err.Error(); {
	case msg == "account no longer exists":
		return "account_gone"
	case msg == "account terminated":
		return "account_gone"
	case msg == "role changed, re-authenticate":
		return "role_changed"
	case msg == "unknown role":
		return "unknown_role"
	default:
		return "missing_permission"
	}
}
