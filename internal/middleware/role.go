package middleware // middleware provides shared request processing for handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/video-rental/internal/service"
)

// RequireAdmin must be registered after Authenticate.  It aborts with 403
// when the authenticated identity is not an admin, and with 401 when no
// identity is present at all (a route wired without Authenticate).
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return service.Unauthorized()
			}
			if !id.IsAdmin {
				return service.Forbidden()
			}
			return next(c)
		}
	}
}
