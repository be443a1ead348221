package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const StatusClientClosedRequest = 499

var grpcToHTTP = map[codes.Code]int{
	codes.OK:                 http.StatusOK,
	codes.Canceled:           StatusClientClosedRequest,
	codes.InvalidArgument:    http.StatusBadRequest,
	codes.OutOfRange:         http.StatusBadRequest,
	codes.FailedPrecondition: http.StatusBadRequest,
	codes.NotFound:           http.StatusNotFound,
	codes.AlreadyExists:      http.StatusConflict,
	codes.Aborted:            http.StatusConflict,
	codes.PermissionDenied:   http.StatusForbidden,
	codes.Unauthenticated:    http.StatusUnauthorized,
	codes.ResourceExhausted:  http.StatusTooManyRequests,
	codes.Unimplemented:      http.StatusNotImplemented,
	codes.Unavailable:        http.StatusServiceUnavailable,
	codes.DeadlineExceeded:   http.StatusGatewayTimeout,
}

// HTTPStatus maps err to a response status: echo errors keep their code,
// grpc status errors (also wrapped ones) map by code, the rest are 500.
func HTTPStatus(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	if errors.Is(err, context.Canceled) {
		return StatusClientClosedRequest
	}
	if st, ok := grpcStatus(err); ok {
		if code, ok := grpcToHTTP[st.Code()]; ok {
			return code
		}
	}
	return http.StatusInternalServerError
}

func grpcStatus(err error) (*status.Status, bool) {
	var se interface{ GRPCStatus() *status.Status }
	if errors.As(err, &se) {
		return se.GRPCStatus(), true
	}
	return nil, false
}

// ErrorHandler renders every handler error as a ResponseError.
func ErrorHandler(log Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if err == nil || c.Response().Committed {
			return
		}

		resp := &ResponseError{
			Status:  HTTPStatus(err),
			Success: false,
			Err:     err,
		}

		var (
			he *echo.HTTPError
			re *ResponseError
		)
		switch {
		case errors.As(err, &re):
			resp = re
		case errors.As(err, &he):
			resp.ErrorMessage = fmt.Sprint(he.Message)
		default:
			if st, ok := grpcStatus(err); ok {
				resp.ErrorCode = st.Code().String()
				resp.ErrorMessage = st.Message()
			} else {
				resp.ErrorMessage = http.StatusText(resp.Status)
			}
		}

		if resp.Status == http.StatusNotFound && isNotFoundHandler(c.Handler()) {
			resp.ErrorMessage = "no route matched"
		}
		if resp.Status >= http.StatusInternalServerError {
			log.Errorw("Request failed", "status", resp.Status, "error", err, "request_id", GetRequestID(c))
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(resp.Status)
		} else {
			writeErr = c.JSON(resp.Status, resp)
		}
		if writeErr != nil {
			log.Errorw("Could not write error response", "code", resp.Status, "error", writeErr)
		}
	}
}
