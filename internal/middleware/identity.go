package middleware

// identity.go holds the context plumbing shared by the auth, rate-limit and
// handler code: where Authenticate stores the identity and how to read it.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/video-rental/internal/utils"
)

const identityKey = "identity"

// anonymous names callers without a valid token in rate-limit keys.
const anonymous = "anon"

// IdentityFrom returns the identity stored by Authenticate.
func IdentityFrom(c echo.Context) (utils.Identity, bool) {
	id, ok := c.Get(identityKey).(utils.Identity)
	return id, ok && id.UserID != ""
}

// callerID names the caller for rate limiting.  Global middleware runs
// before a route's Authenticate, so when no identity is stored yet the
// token is verified here too.  A missing or bad token counts as anonymous
// and is left for the route's gate to reject.
func callerID(c echo.Context, gate Authenticator) string {
	if id, ok := IdentityFrom(c); ok {
		return id.UserID
	}
	raw := rawToken(c)
	if gate == nil || raw == "" {
		return anonymous
	}
	id, err := gate.Authenticate(raw)
	if err != nil || id.UserID == "" {
		return anonymous
	}
	return id.UserID
}
