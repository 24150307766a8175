package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/stackpeak/account-system/internal/api/middleware"
	"github.com/stackpeak/account-system/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Auth middleware and
// fast-fails before any service call when it is absent — presence proves
// the middleware ran.
func ctxIdentity(c echo.Context) (domain.AuthenticatedIdentity, error) {
	identity, ok := middleware.Identity(c)
	if !ok {
		return domain.AuthenticatedIdentity{}, domain.Unauthorized("missing authentication claims")
	}
	return identity, nil
}
