package util

import (
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/chapool/txengine/internal/config"
)

// LogFromContext returns a request-scoped logger from the context, falling back to the global logger
func LogFromContext(ctx context.Context) *zerolog.Logger {
	l := log.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		if ShouldDisableLogger(ctx) {
			return l
		}
		l = &log.Logger
	}
	return l
}

type disableLoggerKey struct{}

// DisableLogger marks ctx so LogFromContext returns a disabled logger instead of the global one
func DisableLogger(ctx context.Context, shouldDisable bool) context.Context {
	return context.WithValue(ctx, disableLoggerKey{}, shouldDisable)
}

// ShouldDisableLogger reports whether DisableLogger was applied to ctx
func ShouldDisableLogger(ctx context.Context) bool {
	s, ok := ctx.Value(disableLoggerKey{}).(bool)
	return ok && s
}

// WithLogger attaches l to ctx
func WithLogger(ctx context.Context, l zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}

// ConfigureLogger applies cfg to the global zerolog logger and returns the closer of the log file, if any
func ConfigureLogger(cfg config.LoggerConfig) (io.Closer, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid log level %q", cfg.Level)
		}
		level = parsed
	}
	zerolog.SetGlobalLevel(level)

	var console io.Writer = os.Stderr
	if cfg.PrettyPrintConsole {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}

	writer := console
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		rolling := &lumberjack.Logger{
			Filename: cfg.File,
			MaxSize:  cfg.FileMaxSizeMB,  // megabytes
			MaxAge:   cfg.FileMaxAgeDays, // days
		}
		writer = zerolog.MultiLevelWriter(console, rolling)
		closer = rolling
	}

	logCtx := zerolog.New(writer).With().Timestamp()
	if cfg.Caller {
		logCtx = logCtx.Caller()
	}
	log.Logger = logCtx.Logger()

	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
