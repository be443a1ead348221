package server

import (
	"context"
	"errors"
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"gopkg.in/alexcesaro/statsd.v2"

	"github.com/nguyentranbao-ct/smart-cart/internal/config"
	pkgmdw "github.com/nguyentranbao-ct/smart-cart/internal/server/middleware"
	"github.com/nguyentranbao-ct/smart-cart/pkg/logger"
	log "github.com/nguyentranbao-ct/smart-cart/pkg/logger/logctx"
)

// NewEcho builds the HTTP surface. A nil statsd client disables the profiler.
func NewEcho(conf *config.Config, handler Controller, profiler *statsd.Client) (*echo.Echo, error) {
	corsPattern, err := regexp.Compile(conf.Server.CORSOrigin)
	if err != nil {
		return nil, err
	}

	httpLog := logger.MustNamed("http")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = pkgmdw.NewValidator()
	e.HTTPErrorHandler = pkgmdw.ErrorHandler(httpLog)

	e.Use(pkgmdw.Metrics())
	e.Use(pkgmdw.RequestID())
	e.Use(accessLog(httpLog))
	e.Use(recoverPanics())
	e.Use(pkgmdw.CORS(corsPattern))
	if profiler != nil {
		e.Use(pkgmdw.Profiler(profiler, pkgmdw.ProfilerConfig{Skipper: isProbe}))
	}
	if conf.Server.Pprof {
		pkgmdw.PprofWrap(e)
	}

	e.GET("/health", handler.Health)

	api := e.Group("/api/v1")
	api.GET("/sources", pkgmdw.WrapHandler(handler.Sources))
	api.GET("/search", handler.Search)
	api.POST("/search", handler.Search)
	api.POST("/robot/interact", handler.Interact)
	api.POST("/query/parse", pkgmdw.WrapHandler(handler.ParseQuery))
	api.POST("/query/keywords", pkgmdw.WrapHandler(handler.Keywords))

	carts := api.Group("/carts")
	carts.POST("", pkgmdw.WrapHandler(handler.CreateCart))
	carts.GET("/:id", pkgmdw.WrapHandler(handler.GetCart))
	carts.DELETE("/:id", pkgmdw.WrapHandler(handler.DeleteCart))
	carts.POST("/:id/items", pkgmdw.WrapHandler(handler.AddItem))
	carts.DELETE("/:id/items", pkgmdw.WrapHandler(handler.ClearCart))
	carts.PATCH("/:id/items/:index", pkgmdw.WrapHandler(handler.UpdateItem))
	carts.DELETE("/:id/items/:index", pkgmdw.WrapHandler(handler.RemoveItem))
	carts.POST("/:id/optimize", pkgmdw.WrapHandler(handler.OptimizeCart))
	carts.GET("/:id/summary", pkgmdw.WrapHandler(handler.CartSummary))

	return e, nil
}

// NewStatsd returns nil when SERVER_STATSD_ADDR is unset.
func NewStatsd(lc fx.Lifecycle, conf *config.Config) *statsd.Client {
	if conf.Server.StatsdAddr == "" {
		return nil
	}
	client, err := pkgmdw.NewStatsdClient(pkgmdw.ProfilerConfig{Address: conf.Server.StatsdAddr})
	if err != nil {
		log.Warnw(context.Background(), "statsd unavailable, profiler disabled", "addr", conf.Server.StatsdAddr, "error", err)
		return nil
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			client.Close()
			return nil
		},
	})
	return client
}

func StartServer(
	lc fx.Lifecycle,
	sd fx.Shutdowner,
	conf *config.Config,
	e *echo.Echo,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Infow(ctx, "starting HTTP server", "addr", conf.Server.Addr)
				if err := e.Start(conf.Server.Addr); !errors.Is(err, http.ErrServerClosed) {
					log.Errorw(context.Background(), "HTTP server stopped", "error", err)
					_ = sd.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}
