package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"amazon", "flipkart", "blinkit", "zepto", "meesho", "nykaa"}, cfg.Sources.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Aggregator.CallTimeout)
	assert.Equal(t, 15*time.Second, cfg.Aggregator.Budget)
	assert.Equal(t, 4, cfg.Aggregator.MaxConcurrency)
	assert.True(t, cfg.Aggregator.FallbackEnabled)
	assert.Equal(t, 5*time.Second, cfg.Interpreter.Timeout)
	assert.Equal(t, CartBackendMemory, cfg.Cart.Backend)
	assert.Equal(t, LLMProviderNone, cfg.LLM.Provider)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SOURCES_ENABLED", "amazon,zepto")
	t.Setenv("SOURCES_ENDPOINTS", "amazon|http://feeds.local/amazon,zepto|http://feeds.local/zepto")
	t.Setenv("AGGREGATOR_MAX_CONCURRENCY", "2")
	t.Setenv("AGGREGATOR_FALLBACK_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"amazon", "zepto"}, cfg.Sources.Enabled)
	assert.Equal(t, map[string]string{
		"amazon": "http://feeds.local/amazon",
		"zepto":  "http://feeds.local/zepto",
	}, cfg.Sources.Endpoints)
	assert.Equal(t, 2, cfg.Aggregator.MaxConcurrency)
	assert.False(t, cfg.Aggregator.FallbackEnabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "budget must exceed call timeout",
			env:  map[string]string{"AGGREGATOR_BUDGET": "5s", "AGGREGATOR_CALL_TIMEOUT": "10s"},
			want: "AGGREGATOR_BUDGET",
		},
		{
			name: "concurrency at least one",
			env:  map[string]string{"AGGREGATOR_MAX_CONCURRENCY": "0"},
			want: "AGGREGATOR_MAX_CONCURRENCY",
		},
		{
			name: "unknown cart backend",
			env:  map[string]string{"CART_BACKEND": "postgres"},
			want: "CART_BACKEND",
		},
		{
			name: "unknown llm provider",
			env:  map[string]string{"LLM_PROVIDER": "anthropic"},
			want: "LLM_PROVIDER",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
