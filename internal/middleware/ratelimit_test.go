package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/video-rental/internal/config"
	"github.com/iliyamo/video-rental/internal/utils"
)

func testLimitConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyParts:       []string{config.KeyByIP},
		Prefix:         "rl",
	}
}

func serveLimited(e *echo.Echo, mw echo.MiddlewareFunc) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/genres", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := mw(ok)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestTokenBucketLocalFallbackBlocks(t *testing.T) {
	e := echo.New()
	mw := NewTokenBucket(testLimitConfig(), nil, nil, zerolog.Nop())

	assert.Equal(t, http.StatusNoContent, serveLimited(e, mw).Code)
	second := serveLimited(e, mw)
	assert.Equal(t, http.StatusNoContent, second.Code)
	assert.Equal(t, "2", second.Header().Get("X-RateLimit-Limit"))

	blocked := serveLimited(e, mw)
	require.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(blocked.Body.Bytes(), &body))
	assert.Equal(t, "Too many requests.", body["error"])
	assert.GreaterOrEqual(t, body["retry_after"], float64(1))
}

func TestTokenBucketDisabled(t *testing.T) {
	e := echo.New()
	cfg := testLimitConfig()
	cfg.Enabled = false
	mw := NewTokenBucket(cfg, nil, nil, zerolog.Nop())
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, serveLimited(e, mw).Code)
	}
}

func TestLocalLimiterKeysAreIndependent(t *testing.T) {
	l := newLocalLimiter(testLimitConfig())
	for i := 0; i < 2; i++ {
		allowed, _, _ := l.take("a")
		assert.True(t, allowed)
	}
	allowed, _, retryMs := l.take("a")
	assert.False(t, allowed)
	assert.Greater(t, retryMs, int64(0))

	allowed, _, _ = l.take("b")
	assert.True(t, allowed)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/rentals", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/rentals")

	cfg := testLimitConfig()
	assert.Equal(t, "rl:ip:10.0.0.7", buildRateKey(cfg, c, gate))

	cfg.KeyParts = []string{config.KeyByUser, config.KeyByRoute}
	assert.Equal(t, "rl:user:anon:route:POST /api/rentals", buildRateKey(cfg, c, gate))

	cfg.KeyParts = config.ParseKeyParts("")
	assert.Equal(t, "rl:ip:10.0.0.7:user:anon:route:POST /api/rentals", buildRateKey(cfg, c, gate))
}

func TestTokenBucketKeysEachUserSeparately(t *testing.T) {
	cfg := testLimitConfig()
	cfg.Capacity = 1
	cfg.KeyParts = []string{config.KeyByUser}

	e := echo.New()
	e.Use(NewTokenBucket(cfg, nil, gate, zerolog.Nop()))
	e.GET("/api/users/me", ok, Authenticate(gate))

	call := func(user string) int {
		tok, err := utils.NewAccessToken(testSecret, user, false, 5)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
		req.Header.Set(TokenHeader, tok.Token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("alice"))
	assert.Equal(t, http.StatusNoContent, call("bob"))
	assert.Equal(t, http.StatusTooManyRequests, call("alice"))
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(3), asInt64(int64(3)))
	assert.Equal(t, int64(4), asInt64("4"))
	assert.Equal(t, int64(0), asInt64(nil))
}
