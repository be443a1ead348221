package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/nguyentranbao-ct/smart-cart/internal/config"
	"github.com/nguyentranbao-ct/smart-cart/internal/repo/cache"
	"github.com/nguyentranbao-ct/smart-cart/internal/repo/llm"
	"github.com/nguyentranbao-ct/smart-cart/internal/repo/memory"
	"github.com/nguyentranbao-ct/smart-cart/internal/repo/mongodb"
	"github.com/nguyentranbao-ct/smart-cart/internal/repo/sources"
	"github.com/nguyentranbao-ct/smart-cart/internal/usecase"
	log "github.com/nguyentranbao-ct/smart-cart/pkg/logger/logctx"
	"github.com/nguyentranbao-ct/smart-cart/pkg/util"
)

func newCatalog(conf *config.Config) *sources.Catalog {
	return sources.NewCatalog(conf.Sources.QuickCommerce)
}

// newRegistry registers a synthetic adapter for every enabled source and a live
// adapter for each enabled source that has an endpoint configured.
func newRegistry(conf *config.Config, catalog *sources.Catalog) (*sources.Registry, error) {
	ctx := context.Background()
	registry := sources.NewRegistry()
	liveOpts := sources.LiveOptions{
		RateLimit: conf.Sources.RateLimit,
		RateBurst: conf.Sources.RateBurst,
		Resty: util.RestyOptions{
			RetryCount: conf.Sources.RetryCount,
			Timeout:    conf.Aggregator.CallTimeout,
			UserAgent:  conf.Sources.UserAgent,
		},
	}
	endpoints := make(map[string]string, len(conf.Sources.Endpoints))
	for name, endpoint := range conf.Sources.Endpoints {
		endpoints[strings.ToLower(strings.TrimSpace(name))] = endpoint
	}

	for _, name := range util.NormalizeNames(conf.Sources.Enabled) {
		info := catalog.Info(name)
		if err := registry.Register(sources.VariantSynthetic, sources.NewSynthetic(info)); err != nil {
			return nil, fmt.Errorf("register synthetic %s: %w", name, err)
		}
		endpoint, ok := endpoints[name]
		if !ok || endpoint == "" {
			continue
		}
		if err := registry.Register(sources.VariantLive, sources.NewLive(info, endpoint, liveOpts)); err != nil {
			return nil, fmt.Errorf("register live %s: %w", name, err)
		}
		log.Infow(ctx, "Live source registered", "source", name, "endpoint", endpoint)
	}
	return registry, nil
}

func newTemplate(catalog *sources.Catalog) *sources.Template {
	return sources.NewTemplate(catalog)
}

func newExtractor(conf *config.Config) (llm.Extractor, error) {
	switch conf.LLM.Provider {
	case config.LLMProviderNone, "":
		return llm.NewNoopExtractor(), nil
	case config.LLMProviderGenkit:
		return llm.NewGenkitExtractor(context.Background(), conf.LLM.GoogleAIAPIKey, conf.LLM.Model), nil
	case config.LLMProviderOpenAI:
		return llm.NewOpenAIExtractor(conf.LLM.OpenAIAPIKey, conf.LLM.OpenAIBaseURL, conf.LLM.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", conf.LLM.Provider)
	}
}

func newCartRepository(lc fx.Lifecycle, conf *config.Config) (usecase.CartRepository, error) {
	switch conf.Cart.Backend {
	case config.CartBackendMemory, "":
		return memory.NewCartRepository(), nil
	case config.CartBackendMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err := mongodb.NewConnection(ctx, mongodb.ConnectionOptions{
			Hosts:    conf.Database.Hosts,
			Direct:   conf.Database.Direct,
			Username: conf.Database.Username,
			Password: conf.Database.Password,
			AuthDB:   conf.Database.AuthDB,
			Database: conf.Database.Database,
		})
		if err != nil {
			return nil, fmt.Errorf("init mongo: %w", err)
		}
		lc.Append(fx.Hook{
			OnStop: db.Close,
		})
		return mongodb.NewCartRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown cart backend %q", conf.Cart.Backend)
	}
}

func newCandidateCache(lc fx.Lifecycle, conf *config.Config) (cache.CandidateCache, error) {
	var c cache.CandidateCache
	switch conf.Dialog.CacheBackend {
	case config.CacheBackendMemory, "":
		c = cache.NewMemoryCache(conf.Dialog.CandidateTTL)
	case config.CacheBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			},
		})
		c = cache.NewRedisCache(client, conf.Redis.Prefix, conf.Dialog.CandidateTTL)
	default:
		return nil, fmt.Errorf("unknown candidate cache backend %q", conf.Dialog.CacheBackend)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return c.Close()
		},
	})
	return c, nil
}

func newInterpreter(extractor llm.Extractor, conf *config.Config) usecase.Interpreter {
	return usecase.NewInterpreter(extractor, conf.Sources.Enabled, conf.Interpreter.Timeout)
}

func newAggregator(registry *sources.Registry, template *sources.Template, conf *config.Config) usecase.Aggregator {
	return usecase.NewAggregator(registry, template, conf.Aggregator)
}

func newDialogUsecase(
	interpreter usecase.Interpreter,
	aggregator usecase.Aggregator,
	carts usecase.CartUsecase,
	candidates cache.CandidateCache,
	conf *config.Config,
) usecase.DialogUsecase {
	return usecase.NewDialogUsecase(interpreter, aggregator, carts, candidates, conf.Dialog)
}
