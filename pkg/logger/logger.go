package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level = zapcore.Level

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

// Logger is the sugared, leveled logger used across the service.
type Logger interface {
	Debugf(template string, args ...any)
	Infof(template string, args ...any)
	Warnf(template string, args ...any)
	Errorf(template string, args ...any)
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
	Logw(level Level, msg string, keysAndValues ...any)
	With(keysAndValues ...any) Logger
	Unwrap() *zap.SugaredLogger
}

type Config struct {
	Level  string
	Format string
}

type sugared struct {
	*zap.SugaredLogger
}

func (s sugared) With(keysAndValues ...any) Logger {
	return sugared{s.SugaredLogger.With(keysAndValues...)}
}

func (s sugared) Logw(level Level, msg string, keysAndValues ...any) {
	switch {
	case level >= ErrorLevel:
		s.Errorw(msg, keysAndValues...)
	case level == WarnLevel:
		s.Warnw(msg, keysAndValues...)
	case level == InfoLevel:
		s.Infow(msg, keysAndValues...)
	default:
		s.Debugw(msg, keysAndValues...)
	}
}

func (s sugared) Unwrap() *zap.SugaredLogger {
	return s.SugaredLogger
}

var (
	mu   sync.RWMutex
	root = zap.NewNop()
)

// Init replaces the root logger. Loggers obtained before Init keep the old core.
func Init(conf Config) error {
	l, err := New(conf)
	if err != nil {
		return err
	}
	mu.Lock()
	root = l
	mu.Unlock()
	zap.ReplaceGlobals(l)
	return nil
}

func New(conf Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(conf.Level))
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", conf.Level, err)
	}

	encoderConf := zap.NewProductionEncoderConfig()
	encoderConf.TimeKey = "time"
	encoderConf.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch conf.Format {
	case "console":
		encoderConf.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConf)
	default:
		encoder = zapcore.NewJSONEncoder(encoderConf)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func Root() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return sugared{root.Sugar()}
}

func Named(name string) (Logger, error) {
	if name == "" {
		return nil, fmt.Errorf("logger name is required")
	}
	mu.RLock()
	defer mu.RUnlock()
	return sugared{root.Named(name).Sugar()}, nil
}

func MustNamed(name string) Logger {
	l, err := Named(name)
	if err != nil {
		panic(err)
	}
	return l
}
