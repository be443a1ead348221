package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentranbao-ct/smart-cart/pkg/ctxval"
)

type recordedLine struct {
	level string
	msg   string
	kv    map[string]any
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []recordedLine
}

func (r *recordingLogger) record(level, msg string, kv []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := map[string]any{}
	for i := 0; i+1 < len(kv); i += 2 {
		m[fmt.Sprint(kv[i])] = kv[i+1]
	}
	r.lines = append(r.lines, recordedLine{level: level, msg: msg, kv: m})
}

func (r *recordingLogger) Debugf(string, ...any)        {}
func (r *recordingLogger) Infow(msg string, kv ...any)  { r.record("info", msg, kv) }
func (r *recordingLogger) Warnw(msg string, kv ...any)  { r.record("warn", msg, kv) }
func (r *recordingLogger) Errorw(msg string, kv ...any) { r.record("error", msg, kv) }

func TestLogRequest(t *testing.T) {
	tier := ctxval.NewKey[string]("search_tier")
	rl := &recordingLogger{}

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(rl)
	e.Use(RequestID())
	e.Use(LogRequest(LogRequestConfig{
		Logger: rl,
		Enabled: func(c echo.Context) bool {
			return c.Request().URL.Path != "/health"
		},
	}))
	e.POST("/search", func(c echo.Context) error {
		ctxval.Set(c.Request().Context(), tier, "synthetic")
		return c.JSON(http.StatusOK, map[string]any{"ok": true})
	})
	e.GET("/fail", func(c echo.Context) error {
		return fmt.Errorf("kaput")
	})
	e.GET("/health", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/search?limit=5", strings.NewReader(`{"query":"milk"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	e.ServeHTTP(httptest.NewRecorder(), req)
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	var requests []recordedLine
	for _, l := range rl.lines {
		if l.msg == "HTTP request" {
			requests = append(requests, l)
		}
	}
	require.Len(t, requests, 2)

	ok := requests[0]
	assert.Equal(t, "info", ok.level)
	assert.Equal(t, http.StatusOK, ok.kv["status"])
	assert.Equal(t, "synthetic", ok.kv["search_tier"])
	assert.NotEmpty(t, ok.kv["request_id"])
	assert.JSONEq(t, `{"query":"milk"}`, string(ok.kv["request_body"].(json.RawMessage)))

	failed := requests[1]
	assert.Equal(t, "error", failed.level)
	assert.Equal(t, http.StatusInternalServerError, failed.kv["status"])
	assert.Equal(t, "kaput", failed.kv["error"])
}
