// Package logctx logs through the root logger with fields carried by the context.
package logctx

import (
	"context"
	"fmt"
	"os"

	"github.com/nguyentranbao-ct/smart-cart/pkg/logger"
)

type fieldsKey struct{}

// WithFields returns a context whose log lines include the given key/value pairs.
func WithFields(ctx context.Context, keysAndValues ...any) context.Context {
	if len(keysAndValues) == 0 {
		return ctx
	}
	prev := Fields(ctx)
	fields := make([]any, 0, len(prev)+len(keysAndValues))
	fields = append(fields, prev...)
	fields = append(fields, keysAndValues...)
	return context.WithValue(ctx, fieldsKey{}, fields)
}

func Fields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).([]any)
	return fields
}

func From(ctx context.Context) logger.Logger {
	l := logger.Root()
	if fields := Fields(ctx); len(fields) > 0 {
		return l.With(fields...)
	}
	return l
}

func Debugf(ctx context.Context, template string, args ...any) {
	From(ctx).Debugf(template, args...)
}

func Infof(ctx context.Context, template string, args ...any) {
	From(ctx).Infof(template, args...)
}

func Warnf(ctx context.Context, template string, args ...any) {
	From(ctx).Warnf(template, args...)
}

func Errorf(ctx context.Context, template string, args ...any) {
	From(ctx).Errorf(template, args...)
}

func Debugw(ctx context.Context, msg string, keysAndValues ...any) {
	From(ctx).Debugw(msg, keysAndValues...)
}

func Infow(ctx context.Context, msg string, keysAndValues ...any) {
	From(ctx).Infow(msg, keysAndValues...)
}

func Warnw(ctx context.Context, msg string, keysAndValues ...any) {
	From(ctx).Warnw(msg, keysAndValues...)
}

func Errorw(ctx context.Context, msg string, keysAndValues ...any) {
	From(ctx).Errorw(msg, keysAndValues...)
}

func Logw(ctx context.Context, level logger.Level, msg string, keysAndValues ...any) {
	From(ctx).Logw(level, msg, keysAndValues...)
}

// Fatal logs the error and exits the process.
func Fatal(err error) {
	logger.Root().Errorw("fatal", "error", err)
	_ = logger.Root().Unwrap().Sync()
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
