package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nguyentranbao-ct/smart-cart/pkg/logger"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{echo.NewHTTPError(http.StatusTeapot, "tea"), http.StatusTeapot},
		{status.Error(codes.NotFound, "cart not found"), http.StatusNotFound},
		{fmt.Errorf("load: %w", status.Error(codes.OutOfRange, "index")), http.StatusBadRequest},
		{status.Error(codes.Unavailable, "down"), http.StatusServiceUnavailable},
		{fmt.Errorf("wrapped: %w", context.Canceled), StatusClientClosedRequest},
		{errors.New("boom"), http.StatusInternalServerError},
		{status.Error(codes.Internal, "bad"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(logger.Root())
	e.GET("/missing", func(c echo.Context) error {
		return fmt.Errorf("get cart: %w", status.Error(codes.NotFound, "cart not found"))
	})
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("secret internals")
	})
	e.GET("/bad", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "limit must be positive")
	})

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/missing", http.StatusNotFound, `{"success":false,"error_code":"NotFound","error_message":"cart not found"}`},
		{"/boom", http.StatusInternalServerError, `{"success":false,"error_message":"Internal Server Error"}`},
		{"/bad", http.StatusBadRequest, `{"success":false,"error_message":"limit must be positive"}`},
		{"/nowhere", http.StatusNotFound, `{"success":false,"error_message":"no route matched"}`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}
