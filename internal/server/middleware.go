package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgmdw "github.com/nguyentranbao-ct/smart-cart/internal/server/middleware"
	"github.com/nguyentranbao-ct/smart-cart/pkg/logger"
	log "github.com/nguyentranbao-ct/smart-cart/pkg/logger/logctx"
)

func isProbe(c echo.Context) bool {
	path := c.Request().URL.Path
	return path == "/health" || path == "/metrics"
}

func accessLog(l logger.Logger) echo.MiddlewareFunc {
	return pkgmdw.LogRequest(pkgmdw.LogRequestConfig{
		Logger: l,
		Enabled: func(c echo.Context) bool {
			return !isProbe(c)
		},
	})
}

func recoverPanics() echo.MiddlewareFunc {
	return middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			log.Errorw(c.Request().Context(), "PANIC RECOVER", "error", err, "stack", string(stack))
			return err
		},
	})
}
