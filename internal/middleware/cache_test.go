package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/video-rental/internal/config"
)

func TestResourceOf(t *testing.T) {
	cases := map[string]string{
		"/api/genres":     "genres",
		"/api/genres/:id": "genres",
		"/api/Movies/:id": "movies",
		"/api/returns":    "returns",
		"/healthz":        "",
		"/metrics":        "",
		"/apix/genres":    "",
	}
	for path, want := range cases {
		assert.Equal(t, want, resourceOf(path), path)
	}
}

func TestCacheKeyNamespacedByResource(t *testing.T) {
	a := httptest.NewRequest(http.MethodGet, "/api/movies?sort=title", nil)
	b := httptest.NewRequest(http.MethodGet, "/api/movies?sort=-title", nil)

	ka := cacheKeyFrom("cache", "movies", a)
	kb := cacheKeyFrom("cache", "movies", b)
	assert.NotEqual(t, ka, kb)
	assert.Regexp(t, `^cache:movies:[0-9a-f]{40}$`, ka)
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`[{"name":"drama"}]`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, echo.MIMEApplicationJSON, got.Get(echo.HeaderContentType))
	assert.JSONEq(t, `[{"name":"drama"}]`, string(body))
}

func TestDecodePayloadRejectsTruncated(t *testing.T) {
	_, _, _, ok := decodePayload([]byte{0, 0})
	assert.False(t, ok)

	_, _, _, ok = decodePayload([]byte{0, 0, 0, 200, 0, 0, 1, 0})
	assert.False(t, ok)
}

func TestWriteAffectsMovies(t *testing.T) {
	assert.Contains(t, writeAffects["rentals"], "movies")
	assert.Contains(t, writeAffects["returns"], "movies")
}

func TestRedisCacheWithoutClientPassesThrough(t *testing.T) {
	mw := NewRedisCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil, zerolog.Nop())

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/genres", nil), rec)
	c.SetPath("/api/genres")

	require.NoError(t, mw(ok)(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
