package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/video-rental/internal/utils"
)

// TokenHeader carries the signed access token on protected calls.
const TokenHeader = "x-auth-token"

// Authenticator verifies a raw access token.  A missing token must fail
// with service.Unauthorized and a bad one with service.InvalidToken;
// *service.AuthService is the implementation the server uses.
type Authenticator interface {
	Authenticate(raw string) (utils.Identity, error)
}

// Authenticate returns an Echo middleware that hands the x-auth-token header
// to gate and stores the decoded identity on the context.  Failures are
// returned as errors so the central error handler renders them like every
// other failure.
func Authenticate(gate Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := gate.Authenticate(rawToken(c))
			if err != nil {
				return err
			}
			c.Set(identityKey, id)
			return next(c)
		}
	}
}

func rawToken(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get(TokenHeader))
}
