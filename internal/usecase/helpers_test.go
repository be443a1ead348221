package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/nguyentranbao-ct/smart-cart/internal/config"
	"github.com/nguyentranbao-ct/smart-cart/internal/models"
	"github.com/nguyentranbao-ct/smart-cart/internal/repo/llm"
	"github.com/nguyentranbao-ct/smart-cart/internal/repo/sources"
)

var allSources = []string{"amazon", "flipkart", "blinkit", "zepto", "meesho", "nykaa"}

type fakeAdapter struct {
	name     string
	products []models.Product
	err      error
	delay    time.Duration
	panics   bool

	calls    atomic.Int32
	inflight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Search(ctx context.Context, _ string, _ int, _ models.Constraints) ([]models.Product, error) {
	f.calls.Add(1)
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if f.panics {
		panic("adapter exploded")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, models.ErrAdapterTimeout
		}
	}
	return f.products, f.err
}

func product(source, name string, price float64) models.Product {
	return models.Product{
		ID:       source + "-" + name,
		Name:     name,
		SourceID: source,
		Price:    models.Price{Current: price},
		Rating:   &models.Rating{Score: 4.2},
		Delivery: &models.Delivery{ETAText: "2 days"},
	}
}

func testAggregatorConfig() config.AggregatorConfig {
	return config.AggregatorConfig{
		CallTimeout:       200 * time.Millisecond,
		Budget:            2 * time.Second,
		MaxConcurrency:    4,
		FallbackEnabled:   true,
		DefaultLimit:      10,
		MaxLimit:          50,
		TemplatePerSource: 3,
		TemplateSources:   2,
	}
}

// newRegistry registers the given live adapters plus synthetic adapters for
// every known source.
func newRegistry(live ...sources.Adapter) *sources.Registry {
	r := sources.NewRegistry()
	catalog := sources.NewCatalog([]string{"blinkit", "zepto"})
	for _, a := range live {
		if err := r.Register(sources.VariantLive, a); err != nil {
			panic(err)
		}
	}
	for _, s := range allSources {
		if err := r.Register(sources.VariantSynthetic, sources.NewSynthetic(catalog.Info(s))); err != nil {
			panic(err)
		}
	}
	return r
}

func newTemplate() *sources.Template {
	return sources.NewTemplate(sources.NewCatalog([]string{"blinkit", "zepto"}))
}

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, text string, srcs []string) (*llm.Extraction, error) {
	args := m.Called(ctx, text, srcs)
	ext, _ := args.Get(0).(*llm.Extraction)
	return ext, args.Error(1)
}

func ptrTo[T any](v T) *T { return &v }
