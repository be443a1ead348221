package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentranbao-ct/smart-cart/internal/models"
	"github.com/nguyentranbao-ct/smart-cart/internal/repo/sources"
	"github.com/nguyentranbao-ct/smart-cart/pkg/ctxval"
)

func intentFor(terms string, targets ...string) models.Intent {
	return models.Intent{ProductTerms: terms, Quantity: 1, TargetSources: targets}
}

func TestAggregateIsolatesFailures(t *testing.T) {
	amazon := &fakeAdapter{name: "amazon", err: fmt.Errorf("amazon: %w", models.ErrAdapterBlocked)}
	flipkart := &fakeAdapter{name: "flipkart", products: []models.Product{
		product("flipkart", "Amul Cheese", 120),
		product("flipkart", "Amul Cheese Slices", 140),
	}}
	zepto := &fakeAdapter{name: "zepto", delay: time.Second}
	meesho := &fakeAdapter{name: "meesho", panics: true}

	agg := NewAggregator(newRegistry(amazon, flipkart, zepto, meesho), newTemplate(), testAggregatorConfig())
	res := agg.Aggregate(context.Background(), intentFor("amul cheese", "amazon", "flipkart", "zepto", "meesho"), 0)

	assert.Equal(t, models.TierLive, res.Tier)
	assert.False(t, res.Partial)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, "flipkart", res.Groups[0].SourceID)
	assert.Equal(t, "Amul Cheese", res.Groups[0].Products[0].Name)
	assert.Equal(t, int32(1), zepto.calls.Load())
	assert.Equal(t, int32(1), meesho.calls.Load())
}

func TestAggregateKeepsTargetOrder(t *testing.T) {
	amazon := &fakeAdapter{name: "amazon", delay: 30 * time.Millisecond, products: []models.Product{product("amazon", "milk a", 10)}}
	zepto := &fakeAdapter{name: "zepto", products: []models.Product{product("zepto", "milk z1", 12), product("zepto", "milk z2", 11)}}

	agg := NewAggregator(newRegistry(amazon, zepto), newTemplate(), testAggregatorConfig())
	res := agg.Aggregate(context.Background(), intentFor("milk", "zepto", "amazon"), 0)

	var names []string
	for _, p := range res.Products() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"milk z1", "milk z2", "milk a"}, names)
}

func TestAggregateExcludesUnrequestedSources(t *testing.T) {
	amazon := &fakeAdapter{name: "amazon", products: []models.Product{product("amazon", "kettle", 900)}}
	flipkart := &fakeAdapter{name: "flipkart", products: []models.Product{
		product("flipkart", "kettle", 800),
		product("amazon", "kettle smuggled", 700),
	}}

	agg := NewAggregator(newRegistry(amazon, flipkart), newTemplate(), testAggregatorConfig())
	res := agg.Aggregate(context.Background(), intentFor("kettle", "flipkart"), 0)

	require.NotEmpty(t, res.Products())
	for _, p := range res.Products() {
		assert.Equal(t, "flipkart", p.SourceID)
	}
	assert.Zero(t, amazon.calls.Load())
}

func TestAggregateAppliesConstraintsAndLimit(t *testing.T) {
	var many []models.Product
	for i := range 20 {
		many = append(many, product("amazon", fmt.Sprintf("pen %d", i), float64(10*(i+1))))
	}
	amazon := &fakeAdapter{name: "amazon", products: many}
	agg := NewAggregator(newRegistry(amazon), newTemplate(), testAggregatorConfig())

	res := agg.Aggregate(context.Background(), intentFor("pen", "amazon"), 0)
	assert.Len(t, res.Products(), 10)

	res = agg.Aggregate(context.Background(), intentFor("pen", "amazon"), 500)
	assert.Len(t, res.Products(), 20)

	in := intentFor("pen", "amazon")
	in.Constraints.MaxPrice = ptrTo(50.0)
	res = agg.Aggregate(context.Background(), in, 3)
	require.Len(t, res.Products(), 3)
	for _, p := range res.Products() {
		assert.LessOrEqual(t, p.Price.Current, 50.0)
	}

	in.Constraints.MinRating = ptrTo(4.5)
	conf := testAggregatorConfig()
	conf.FallbackEnabled = false
	res = NewAggregator(newRegistry(amazon), newTemplate(), conf).Aggregate(context.Background(), in, 3)
	assert.Zero(t, res.Total())
}

func TestAggregateFallsBackToSynthetic(t *testing.T) {
	amazon := &fakeAdapter{name: "amazon", err: models.ErrAdapterParse}
	agg := NewAggregator(newRegistry(amazon), newTemplate(), testAggregatorConfig())

	ctx := ctxval.Wrap(context.Background())
	res := agg.Aggregate(ctx, intentFor("amul cheese", "amazon", "zepto"), 0)

	assert.Equal(t, models.TierSynthetic, res.Tier)
	require.NotEmpty(t, res.Products())
	for _, p := range res.Products() {
		assert.Contains(t, []string{"amazon", "zepto"}, p.SourceID)
	}
	tier, ok := ctxval.Get(ctx, SearchTierKey)
	assert.True(t, ok)
	assert.Equal(t, models.TierSynthetic, tier)

	again := agg.Aggregate(context.Background(), intentFor("amul cheese", "amazon", "zepto"), 0)
	assert.Equal(t, res.Groups, again.Groups)
}

func TestAggregateTemplateWhenEverythingFails(t *testing.T) {
	reg := sources.NewRegistry()
	for _, s := range allSources {
		require.NoError(t, reg.Register(sources.VariantLive, &fakeAdapter{name: s, err: models.ErrAdapterBlocked}))
		require.NoError(t, reg.Register(sources.VariantSynthetic, &fakeAdapter{name: s, err: models.ErrAdapterTimeout}))
	}
	agg := NewAggregator(reg, newTemplate(), testAggregatorConfig())

	res := agg.Aggregate(context.Background(), intentFor("garden hose", "nykaa", "amazon", "zepto"), 0)
	assert.Equal(t, models.TierTemplate, res.Tier)
	require.Len(t, res.Groups, 2)
	assert.Equal(t, "nykaa", res.Groups[0].SourceID)
	assert.Equal(t, "amazon", res.Groups[1].SourceID)
	assert.Len(t, res.Products(), 6)

	conf := testAggregatorConfig()
	conf.FallbackEnabled = false
	res = NewAggregator(reg, newTemplate(), conf).Aggregate(context.Background(), intentFor("garden hose", "amazon"), 0)
	assert.Equal(t, models.TierLive, res.Tier)
	assert.Zero(t, res.Total())
}

func TestAggregateBudgetReturnsPartial(t *testing.T) {
	fast := &fakeAdapter{name: "zepto", products: []models.Product{product("zepto", "bread", 40)}}
	slow := &fakeAdapter{name: "amazon", delay: 5 * time.Second, products: []models.Product{product("amazon", "bread", 30)}}

	conf := testAggregatorConfig()
	conf.CallTimeout = 5 * time.Second
	conf.Budget = 100 * time.Millisecond
	agg := NewAggregator(newRegistry(fast, slow), newTemplate(), conf)

	start := time.Now()
	res := agg.Aggregate(context.Background(), intentFor("bread", "amazon", "zepto"), 0)

	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, res.Partial)
	assert.Equal(t, models.TierLive, res.Tier)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, "zepto", res.Groups[0].SourceID)
}

func TestAggregateRespectsConcurrencyCap(t *testing.T) {
	shared := &fakeAdapter{delay: 20 * time.Millisecond, products: nil}
	reg := sources.NewRegistry()
	for _, s := range allSources {
		require.NoError(t, reg.Register(sources.VariantLive, namedAdapter{name: s, fakeAdapter: shared}))
	}
	conf := testAggregatorConfig()
	conf.MaxConcurrency = 2
	conf.FallbackEnabled = false

	NewAggregator(reg, newTemplate(), conf).Aggregate(context.Background(), intentFor("tea", allSources...), 0)
	assert.Equal(t, int32(len(allSources)), shared.calls.Load())
	assert.LessOrEqual(t, shared.peak.Load(), int32(2))
}

// namedAdapter lets several registry entries share one fakeAdapter's counters.
type namedAdapter struct {
	*fakeAdapter
	name string
}

func (n namedAdapter) Name() string { return n.name }

func TestAggregateEmptyInputs(t *testing.T) {
	agg := NewAggregator(newRegistry(), newTemplate(), testAggregatorConfig())
	assert.Zero(t, agg.Aggregate(context.Background(), intentFor("  ", "amazon"), 0).Total())
	assert.Zero(t, agg.Aggregate(context.Background(), intentFor("milk"), 0).Total())
}
