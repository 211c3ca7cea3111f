package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/video-rental/internal/service"
	"github.com/iliyamo/video-rental/internal/utils"
)

const testSecret = "middleware-secret"

var gate = service.NewAuthService(nil, service.AuthConfig{JWTSecret: testSecret})

func newCtx(token string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/genres", nil)
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func ok(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

func TestAuthenticateMissingToken(t *testing.T) {
	c, _ := newCtx("")
	err := Authenticate(gate)(ok)(c)
	assert.True(t, service.IsKind(err, service.KindUnauthorized))
}

func TestAuthenticateBadToken(t *testing.T) {
	c, _ := newCtx("not.a.jwt")
	err := Authenticate(gate)(ok)(c)
	assert.True(t, service.IsKind(err, service.KindInvalidToken))

	other, err := utils.NewAccessToken("another-secret", "u-1", false, 5)
	require.NoError(t, err)
	c, _ = newCtx(other.Token)
	err = Authenticate(gate)(ok)(c)
	assert.True(t, service.IsKind(err, service.KindInvalidToken))
}

func TestAuthenticateStoresIdentity(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, "u-1", true, 5)
	require.NoError(t, err)
	c, rec := newCtx(tok.Token)

	require.NoError(t, Authenticate(gate)(ok)(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	id, found := IdentityFrom(c)
	require.True(t, found)
	assert.Equal(t, "u-1", id.UserID)
	assert.True(t, id.IsAdmin)
	assert.Equal(t, "u-1", callerID(c, nil))
}

func TestRequireAdmin(t *testing.T) {
	c, _ := newCtx("")
	err := RequireAdmin()(ok)(c)
	assert.True(t, service.IsKind(err, service.KindUnauthorized))

	c, _ = newCtx("")
	c.Set(identityKey, utils.Identity{UserID: "u-1"})
	err = RequireAdmin()(ok)(c)
	assert.True(t, service.IsKind(err, service.KindForbidden))

	c, rec := newCtx("")
	c.Set(identityKey, utils.Identity{UserID: "u-1", IsAdmin: true})
	require.NoError(t, RequireAdmin()(ok)(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCallerIDReadsTokenBeforeAuthenticate(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, "u-9", false, 5)
	require.NoError(t, err)

	c, _ := newCtx(tok.Token)
	assert.Equal(t, "u-9", callerID(c, gate))
	_, stored := IdentityFrom(c)
	assert.False(t, stored)

	c, _ = newCtx("")
	assert.Equal(t, anonymous, callerID(c, gate))

	c, _ = newCtx("garbage")
	assert.Equal(t, anonymous, callerID(c, gate))
	assert.Equal(t, anonymous, callerID(c, nil))
}
