// Package logging configures logrus and carries request-scoped loggers and
// correlation ids through contexts.
package logging

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type Config struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// New builds the process logger. An unknown level falls back to info.
func New(cfg Config, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}
	logger := logrus.New()
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

type ctxKey int

const (
	loggerKey ctxKey = iota
	correlationIDKey
)

// ToContext stores a request-scoped logger.
func ToContext(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey, entry)
}

// FromContext returns the logger stored by ToContext, or a standard logger entry.
func FromContext(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(loggerKey).(*logrus.Entry); ok {
		return entry
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext returns "" when the context carries none.
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}
