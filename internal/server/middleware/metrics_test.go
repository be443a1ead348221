package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func makeRequest(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestMetricsMiddleware(t *testing.T) {
	conf := DefaultMetricsConfig
	conf.Namespace = "metrics_test"
	mustRegisterHTTPMetrics(conf).duration.Reset()

	e := echo.New()
	e.Use(MetricsWithConfig(conf))
	e.GET("/carts/:cart_id", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Param("cart_id"))
	})
	e.GET("/boom", func(c echo.Context) error {
		return fmt.Errorf("internal error")
	})

	for i := range 10 {
		makeRequest(e, http.MethodGet, fmt.Sprintf("/carts/c-%d", i))
	}
	for range 4 {
		makeRequest(e, http.MethodGet, "/boom")
	}
	for i := range 3 {
		makeRequest(e, http.MethodGet, fmt.Sprintf("/random-%d", i))
	}
	makeRequest(e, http.MethodPost, "/nowhere")

	body := makeRequest(e, http.MethodGet, "/metrics").Body.String()
	assert.Contains(t, body, `metrics_test_http_request_duration_seconds_count{code="200",method="GET",path="/carts/:cart_id"} 10`)
	assert.Contains(t, body, `metrics_test_http_request_duration_seconds_count{code="500",method="GET",path="/boom"} 4`)
	assert.Contains(t, body, `metrics_test_http_request_duration_seconds_count{code="404",method="GET",path="/not-found"} 3`)
	assert.Contains(t, body, `metrics_test_http_request_duration_seconds_count{code="404",method="POST",path="/not-found"} 1`)
	assert.Contains(t, body, `metrics_test_http_requests_in_flight 0`)
}

func TestNormalizeHTTPStatus(t *testing.T) {
	assert.Equal(t, "1xx", normalizeHTTPStatus(101))
	assert.Equal(t, "2xx", normalizeHTTPStatus(204))
	assert.Equal(t, "4xx", normalizeHTTPStatus(499))
	assert.Equal(t, "5xx", normalizeHTTPStatus(503))
}
