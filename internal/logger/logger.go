package logger

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const loggerKey = contextKey("logger")

// New builds a JSON production logger, or a console one when development is set.
func New(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "could not build logger")
	}
	return l, nil
}

// WithContext stores the logger in the context.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the request logger, or a no-op logger when none was attached.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// GormLogger routes gorm's SQL trace into zap at debug level.
type GormLogger struct {
	l *zap.Logger
}

func NewGormLogger(l *zap.Logger) GormLogger {
	return GormLogger{l: l.Named("gorm")}
}

func (g GormLogger) Print(v ...interface{}) {
	if len(v) >= 6 && v[0] == "sql" {
		g.l.Debug("sql",
			zap.Any("source", v[1]),
			zap.Any("duration", v[2]),
			zap.Any("query", v[3]),
			zap.Any("vars", v[4]),
			zap.Any("rows", v[5]),
		)
		return
	}
	g.l.Debug("gorm", zap.Any("values", v))
}
