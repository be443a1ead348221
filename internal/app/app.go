package app

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"

	"github.com/nguyentranbao-ct/smart-cart/internal/config"
	"github.com/nguyentranbao-ct/smart-cart/internal/server"
	"github.com/nguyentranbao-ct/smart-cart/internal/usecase"
	"github.com/nguyentranbao-ct/smart-cart/pkg/logger"
	log "github.com/nguyentranbao-ct/smart-cart/pkg/logger/logctx"
)

// Invoke builds the application graph around conf. Loggers are initialised
// from conf.Log before any provider runs.
func Invoke(conf *config.Config, opts ...fx.Option) *fx.App {
	if err := logger.Init(logger.Config{Level: conf.Log.Level, Format: conf.Log.Format}); err != nil {
		log.Fatal(err)
	}
	l := logger.MustNamed("app")
	l.Debugw("config loaded", "env", conf.Env, "sources", conf.Sources.Enabled, "cart_backend", conf.Cart.Backend)

	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			fl := &fxevent.ZapLogger{
				Logger: l.Unwrap().Desugar(),
			}
			fl.UseLogLevel(zapcore.DebugLevel)
			return fl
		}),
		fx.Supply(conf),
		fx.Provide(
			newCatalog,
			newRegistry,
			newTemplate,
			newExtractor,
			newCartRepository,
			newCandidateCache,

			newInterpreter,
			newAggregator,
			newDialogUsecase,
			usecase.NewCartUsecase,

			server.NewController,
			server.NewStatsd,
			server.NewEcho,
		),
		fx.Options(opts...),
	)
}
