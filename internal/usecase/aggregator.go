package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/nguyentranbao-ct/smart-cart/internal/config"
	"github.com/nguyentranbao-ct/smart-cart/internal/models"
	"github.com/nguyentranbao-ct/smart-cart/internal/repo/sources"
	"github.com/nguyentranbao-ct/smart-cart/pkg/ctxval"
	log "github.com/nguyentranbao-ct/smart-cart/pkg/logger/logctx"
	"github.com/nguyentranbao-ct/smart-cart/pkg/util"
)

var (
	SearchTierKey    = ctxval.NewKey[models.Tier]("search_tier")
	SearchPartialKey = ctxval.NewKey[bool]("search_partial")
)

type aggregator struct {
	registry *sources.Registry
	template *sources.Template
	conf     config.AggregatorConfig
	duration *prometheus.HistogramVec
}

func NewAggregator(registry *sources.Registry, template *sources.Template, conf config.AggregatorConfig) Aggregator {
	return &aggregator{
		registry: registry,
		template: template,
		conf:     conf,
		duration: util.MustHistogramVec("source_search_duration_seconds", "source", "tier", "code"),
	}
}

// Aggregate fans out to the intent's sources and escalates live -> synthetic ->
// template while the result stays empty. It never fails; the overall budget
// turns slow sources into a partial result.
func (a *aggregator) Aggregate(ctx context.Context, intent models.Intent, limit int) models.SearchResult {
	limit = a.clampLimit(limit)
	result := models.SearchResult{Groups: []models.SourceGroup{}, Tier: models.TierLive}
	if strings.TrimSpace(intent.ProductTerms) == "" || len(intent.TargetSources) == 0 {
		return result
	}

	budgetCtx, cancel := context.WithTimeout(ctx, a.conf.Budget)
	defer cancel()

	result.Groups, result.Partial = a.fanOut(budgetCtx, sources.VariantLive, models.TierLive, intent, limit)

	if result.Total() == 0 && a.conf.FallbackEnabled {
		var partial bool
		result.Tier = models.TierSynthetic
		result.Groups, partial = a.fanOut(budgetCtx, sources.VariantSynthetic, models.TierSynthetic, intent, limit)
		result.Partial = result.Partial || partial
	}

	if result.Total() == 0 && a.conf.FallbackEnabled {
		result.Tier = models.TierTemplate
		n := min(a.conf.TemplateSources, len(intent.TargetSources))
		result.Groups = a.template.Generate(intent.ProductTerms, intent.TargetSources[:n], a.conf.TemplatePerSource)
	}

	ctxval.Set(ctx, SearchTierKey, result.Tier)
	ctxval.Set(ctx, SearchPartialKey, result.Partial)
	log.Infow(ctx, "Aggregated search",
		"terms", intent.ProductTerms,
		"sources", intent.TargetSources,
		"tier", result.Tier.String(),
		"partial", result.Partial,
		"total", result.Total())
	return result
}

func (a *aggregator) clampLimit(limit int) int {
	if limit <= 0 {
		return a.conf.DefaultLimit
	}
	return min(limit, a.conf.MaxLimit)
}

// fanOut calls every registered adapter of the variant, at most
// MaxConcurrency at a time. Results land in per-source slots so merge order is
// the target order regardless of completion order. When ctx expires the slots
// filled so far are returned and late writers are ignored.
func (a *aggregator) fanOut(ctx context.Context, variant sources.Variant, tier models.Tier, intent models.Intent, limit int) ([]models.SourceGroup, bool) {
	slots := make([][]models.Product, len(intent.TargetSources))
	var (
		mu     sync.Mutex
		closed bool
	)

	eg := &errgroup.Group{}
	eg.SetLimit(max(1, a.conf.MaxConcurrency))
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i, name := range intent.TargetSources {
			adapter, ok := a.registry.Get(variant, name)
			if !ok {
				continue
			}
			if ctx.Err() != nil {
				break
			}
			eg.Go(func() error {
				products := a.callSource(ctx, adapter, name, tier, intent, limit)
				mu.Lock()
				defer mu.Unlock()
				if !closed {
					slots[i] = products
				}
				return nil
			})
		}
		_ = eg.Wait()
	}()

	partial := false
	select {
	case <-done:
	case <-ctx.Done():
		select {
		case <-done:
		default:
			partial = true
			log.Warnw(ctx, "Search budget exhausted, returning partial results", "tier", tier.String())
		}
	}

	mu.Lock()
	closed = true
	groups := make([]models.SourceGroup, 0, len(slots))
	for i, products := range slots {
		if len(products) > 0 {
			groups = append(groups, models.SourceGroup{SourceID: intent.TargetSources[i], Products: products})
		}
	}
	mu.Unlock()
	return groups, partial
}

// callSource isolates one adapter call: its own timeout, panic recovery, and
// post-filtering so a misbehaving adapter cannot leak foreign or out-of-bound
// products into the result.
func (a *aggregator) callSource(ctx context.Context, adapter sources.Adapter, name string, tier models.Tier, intent models.Intent, limit int) (out []models.Product) {
	start := time.Now()
	code := "ok"
	defer func() {
		a.duration.WithLabelValues(name, tier.String(), code).Observe(time.Since(start).Seconds())
	}()
	defer func() {
		if r := recover(); r != nil {
			code = "panic"
			out = nil
			log.Errorw(ctx, "Source adapter panicked", "source", name, "tier", tier.String(), "panic", fmt.Sprint(r))
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, a.conf.CallTimeout)
	defer cancel()

	products, err := adapter.Search(callCtx, intent.ProductTerms, limit, intent.Constraints)
	if err != nil {
		code = adapterErrorCode(callCtx, err)
		log.Warnw(ctx, "Source search failed", "source", name, "tier", tier.String(), "code", code, "error", err)
		return nil
	}

	out = make([]models.Product, 0, min(len(products), limit))
	for _, p := range products {
		if len(out) >= limit {
			break
		}
		if p.SourceID != name || !intent.Constraints.Allows(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func adapterErrorCode(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, models.ErrAdapterTimeout), ctx.Err() != nil:
		return "timeout"
	case errors.Is(err, models.ErrAdapterBlocked):
		return "blocked"
	case errors.Is(err, models.ErrAdapterParse):
		return "parse"
	default:
		return "error"
	}
}
