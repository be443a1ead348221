package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/alexcesaro/statsd.v2"
)

func TestTimingBucket(t *testing.T) {
	assert.Equal(t, "response.post./api/v1/search.200", timingBucket(http.MethodPost, "/api/v1/search", 200))
	assert.Equal(t, "response.get./api/v1/cart/cart_id.404", timingBucket(http.MethodGet, "/api/v1/cart/:cart_id", 404))
	assert.Equal(t, "response.get./not-found.404", timingBucket(http.MethodGet, "", 404))
}

func TestProfilerPassesThrough(t *testing.T) {
	client, err := statsd.New(statsd.Mute(true))
	require.NoError(t, err)
	defer client.Close()

	e := echo.New()
	e.Use(Profiler(client, DefaultProfilerConfig))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}
