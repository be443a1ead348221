package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/nguyentranbao-ct/smart-cart/internal/config"
	"github.com/nguyentranbao-ct/smart-cart/internal/repo/cache"
	"github.com/nguyentranbao-ct/smart-cart/internal/repo/llm"
	"github.com/nguyentranbao-ct/smart-cart/internal/repo/memory"
	"github.com/nguyentranbao-ct/smart-cart/internal/repo/sources"
	"github.com/nguyentranbao-ct/smart-cart/internal/usecase"
)

var enabledSources = []string{"amazon", "flipkart", "blinkit", "zepto", "meesho", "nykaa"}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	conf := &config.Config{
		Server:  config.ServerConfig{CORSOrigin: ".*"},
		Sources: config.SourcesConfig{Enabled: enabledSources, QuickCommerce: []string{"blinkit", "zepto"}},
		Aggregator: config.AggregatorConfig{
			CallTimeout:       time.Second,
			Budget:            2 * time.Second,
			MaxConcurrency:    4,
			FallbackEnabled:   true,
			DefaultLimit:      10,
			MaxLimit:          50,
			TemplatePerSource: 3,
			TemplateSources:   2,
		},
		Dialog: config.DialogConfig{MaxCandidates: 5},
	}

	catalog := sources.NewCatalog(conf.Sources.QuickCommerce)
	registry := sources.NewRegistry()
	for _, name := range enabledSources {
		require.NoError(t, registry.Register(sources.VariantSynthetic, sources.NewSynthetic(catalog.Info(name))))
	}
	candidates := cache.NewMemoryCache(time.Minute)
	t.Cleanup(func() { _ = candidates.Close() })

	interpreter := usecase.NewInterpreter(llm.NewNoopExtractor(), enabledSources, time.Second)
	aggregator := usecase.NewAggregator(registry, sources.NewTemplate(catalog), conf.Aggregator)
	carts := usecase.NewCartUsecase(memory.NewCartRepository())
	dialog := usecase.NewDialogUsecase(interpreter, aggregator, carts, candidates, conf.Dialog)

	ctrl := NewController(conf, interpreter, aggregator, carts, dialog, catalog, registry)
	e, err := NewEcho(conf, ctrl, nil)
	require.NoError(t, err)
	return e
}

func do(e *echo.Echo, method, path, body string) (*httptest.ResponseRecorder, gjson.Result) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, gjson.Parse(rec.Body.String())
}

func TestHealthAndSources(t *testing.T) {
	e := newTestServer(t)

	rec, body := do(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body.Get("status").String())
	assert.NotEmpty(t, rec.Header().Get("x-request-id"))

	rec, body = do(e, http.MethodGet, "/api/v1/sources", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Get("success").Bool())
	assert.Len(t, body.Get("data").Array(), len(enabledSources))
	assert.Equal(t, "quick_commerce", body.Get(`data.#(name=="zepto").type`).String())
	assert.Equal(t, "ecommerce", body.Get(`data.#(name=="amazon").type`).String())
	assert.False(t, body.Get(`data.#(name=="amazon").live`).Bool())
}

func TestSearchEndpoint(t *testing.T) {
	e := newTestServer(t)

	rec, body := do(e, http.MethodPost, "/api/v1/search", `{"query":"amul cheese","sources":["zepto","amazon"],"limit":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Get("success").Bool())
	assert.Equal(t, "synthetic", body.Get("tier").String())
	assert.False(t, body.Get("partial").Bool())
	groups := body.Get("groups").Array()
	require.Len(t, groups, 2)
	assert.Equal(t, "zepto", groups[0].Get("source_id").String())
	assert.Equal(t, "amazon", groups[1].Get("source_id").String())
	assert.LessOrEqual(t, len(groups[0].Get("products").Array()), 3)
	assert.NotEmpty(t, body.Get("products").Array())

	rec, body = do(e, http.MethodGet, "/api/v1/search?query=milk&sources=blinkit,zepto", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"blinkit", "zepto"}, body.Get("sources").Value())
	for _, p := range body.Get("products").Array() {
		assert.Contains(t, []string{"blinkit", "zepto"}, p.Get("source_id").String())
	}

	rec, _ = do(e, http.MethodPost, "/api/v1/search", `{"limit":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(e, http.MethodPost, "/api/v1/search", `{"query":"milk","min_rating":9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartEndpoints(t *testing.T) {
	e := newTestServer(t)

	rec, body := do(e, http.MethodPost, "/api/v1/carts", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	id := body.Get("data.id").String()
	require.NotEmpty(t, id)
	base := "/api/v1/carts/" + id

	rec, body = do(e, http.MethodPost, base+"/items",
		`{"product":{"name":"Amul Cheese","source_id":"amazon","price":{"current":100},"delivery":{"eta_text":"2-3 days"}},"quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 200.0, body.Get("data.total_price").Float())
	assert.Equal(t, int64(2), body.Get("data.total_items").Int())

	rec, body = do(e, http.MethodPatch, base+"/items/0", `{"quantity":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 300.0, body.Get("data.total_price").Float())

	rec, body = do(e, http.MethodPatch, base+"/items/5", `{"quantity":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, body.Get("success").Bool())
	assert.Equal(t, "OutOfRange", body.Get("error_code").String())

	rec, _ = do(e, http.MethodPatch, base+"/items/0", `{"quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = do(e, http.MethodPost, base+"/optimize", `{"mode":"best_price"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "best_price", body.Get("data.mode").String())
	assert.Equal(t, 300.0, body.Get("data.optimized_total").Float())
	assert.Equal(t, "2 days", body.Get("data.delivery_eta").String())

	rec, _ = do(e, http.MethodPost, base+"/optimize", `{"mode":"cheapest"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = do(e, http.MethodDelete, base+"/items/0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body.Get("data.items").Array())

	rec, _ = do(e, http.MethodPost, base+"/optimize", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(e, http.MethodPost, base+"/items", `{"product":{"name":"","source_id":"amazon"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = do(e, http.MethodDelete, base+"/items", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, body.Get("data.total_price").Float())

	rec, _ = do(e, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, body = do(e, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NotFound", body.Get("error_code").String())
}

func TestCartSummaryEndpoint(t *testing.T) {
	e := newTestServer(t)

	_, body := do(e, http.MethodPost, "/api/v1/carts", "")
	base := "/api/v1/carts/" + body.Get("data.id").String()

	rec, body := do(e, http.MethodGet, base+"/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, body.Get("data.total_price").Float())
	assert.Equal(t, "N/A", body.Get("data.delivery_summary.fastest_delivery").String())
	assert.Empty(t, body.Get("data.platforms_used").Array())

	do(e, http.MethodPost, base+"/items",
		`{"product":{"name":"Amul Cheese","source_id":"amazon","price":{"current":100,"original":125},"delivery":{"eta_text":"2-3 days"}},"quantity":2}`)
	do(e, http.MethodPost, base+"/items",
		`{"product":{"name":"Tata Salt","source_id":"blinkit","price":{"current":28},"delivery":{"eta_text":"10 mins"}}}`)

	rec, body = do(e, http.MethodGet, base+"/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Get("success").Bool())
	data := body.Get("data")
	assert.Equal(t, int64(3), data.Get("total_items").Int())
	assert.Equal(t, int64(2), data.Get("item_count").Int())
	assert.Equal(t, 228.0, data.Get("total_price").Float())
	assert.Equal(t, 278.0, data.Get("total_original_price").Float())
	assert.Equal(t, 50.0, data.Get("total_savings").Float())
	assert.Equal(t, []any{"amazon", "blinkit"}, data.Get("platforms_used").Value())
	assert.Equal(t, "10 mins", data.Get("delivery_summary.fastest_delivery").String())
	assert.Equal(t, "2-3 days", data.Get("delivery_summary.platforms.amazon.0").String())

	rec, body = do(e, http.MethodGet, "/api/v1/carts/missing/summary", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NotFound", body.Get("error_code").String())
}

func TestQueryEndpoints(t *testing.T) {
	e := newTestServer(t)

	rec, body := do(e, http.MethodPost, "/api/v1/query/parse", `{"query":"add 3 amul butter under 200 rupees on zepto"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Get("success").Bool())
	data := body.Get("data")
	assert.Equal(t, "amul butter", data.Get("product_terms").String())
	assert.Equal(t, int64(3), data.Get("quantity").Int())
	assert.Equal(t, 200.0, data.Get("constraints.max_price").Float())
	assert.Equal(t, []any{"zepto"}, data.Get("target_sources").Value())

	rec, body = do(e, http.MethodPost, "/api/v1/query/keywords", `{"query":"I need 2 kg basmati rice"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"basmati", "rice"}, body.Get("data.keywords").Value())
	assert.Equal(t, int64(2), body.Get("data.count").Int())

	rec, _ = do(e, http.MethodPost, "/api/v1/query/parse", `{"query":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(e, http.MethodPost, "/api/v1/query/parse", `{"query":"milk","sources":["bad source!"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRobotInteract(t *testing.T) {
	e := newTestServer(t)

	rec, body := do(e, http.MethodPost, "/api/v1/robot/interact", `{"user_message":"search amul cheese"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Get("success").Bool())
	assert.Equal(t, "show_search_results", body.Get("action").String())
	assert.NotEmpty(t, body.Get("data").Array())
	assert.False(t, body.Get("cart_id").Exists())

	rec, body = do(e, http.MethodPost, "/api/v1/robot/interact",
		`{"user_message":"","selected_product":{"name":"Tata Salt","source_id":"blinkit","price":{"current":28}},"quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "added_to_cart", body.Get("action").String())
	cartID := body.Get("cart_id").String()
	require.NotEmpty(t, cartID)

	rec, body = do(e, http.MethodGet, "/api/v1/carts/"+cartID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 56.0, body.Get("data.total_price").Float())

	rec, _ = do(e, http.MethodPost, "/api/v1/robot/interact", `{"user_message":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
