package util

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"amazon", "flipkart"}, Dedupe([]string{"amazon", "flipkart", "amazon"}))
	assert.Empty(t, Dedupe([]int{}))
}

func TestNormalizeNames(t *testing.T) {
	got := NormalizeNames([]string{" Amazon", "", "amazon", "ZEPTO "})
	assert.Equal(t, []string{"amazon", "zepto"}, got)
}

func TestGetHistogramVecIsIdempotent(t *testing.T) {
	a, err := GetHistogramVec("util_test_duration_seconds", "code")
	require.NoError(t, err)
	b, err := GetHistogramVec("util_test_duration_seconds", "code")
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestNewRestyClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewRestyClient(RestyOptions{RetryCount: 2, Timeout: time.Second, UserAgent: "test"})
	resp, err := c.R().SetContext(t.Context()).Get(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, int32(2), calls.Load())
}
