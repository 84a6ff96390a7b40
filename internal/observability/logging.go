// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger *Logger

var logLevel = new(slog.LevelVar)

func init() {
	GlobalLogger = &Logger{Logger: slog.New(newHandler(os.Stdout))}
}

func newHandler(f *os.File) slog.Handler {
	opts := &slog.HandlerOptions{Level: logLevel}
	if isatty.IsTerminal(f.Fd()) {
		return slog.NewTextHandler(f, opts)
	}
	return slog.NewJSONHandler(f, opts)
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level: %s", level)
	}
}

// SetLevel changes the level of GlobalLogger.
func SetLevel(level string) error {
	parsed, err := ParseLevel(level)
	if err != nil {
		return err
	}
	logLevel.Set(parsed)
	return nil
}

// LogContextKey is a type for context keys used by the logging package.
type LogContextKey string

// CorrelationID is the context key carrying the correlation id.
const CorrelationID LogContextKey = "correlation_id"

// LoggingConfig defines which types of automated logging are enabled.
type LoggingConfig struct {
	EnableStoreLogging bool
}

// Config holds the current logging configuration.
var Config = LoggingConfig{
	EnableStoreLogging: true,
}

// GenerateCorrelationID creates a new unique correlation ID.
func GenerateCorrelationID() string {
	return uuid.NewString()
}

// WithCorrelationID returns a new context with the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationID, id)
}

// ExtractCorrelationID retrieves the correlation ID from the context.
func ExtractCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationID).(string); ok {
		return id
	}
	return ""
}

// StoreLogger provides structured logging for data store mutations.
type StoreLogger struct {
	component string
	logger    *Logger
}

// NewStoreLogger creates a StoreLogger for the named component.
func NewStoreLogger(component string) *StoreLogger {
	return &StoreLogger{
		component: component,
		logger:    GlobalLogger,
	}
}

func (l *StoreLogger) attrs(ctx context.Context, operation string, fields map[string]any) []any {
	attrs := []any{
		slog.String("component", l.component),
		slog.String("operation", operation),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	return attrs
}

// LogMutation logs a committed store mutation.
func (l *StoreLogger) LogMutation(ctx context.Context, operation string, fields map[string]any) {
	if !Config.EnableStoreLogging {
		return
	}
	l.logger.DebugContext(ctx, "store mutation", l.attrs(ctx, operation, fields)...)
}

// LogLoad logs a collection read from storage.
func (l *StoreLogger) LogLoad(ctx context.Context, key string, found bool) {
	if !Config.EnableStoreLogging {
		return
	}
	l.logger.DebugContext(ctx, "collection loaded",
		slog.String("component", l.component),
		slog.String("key", key),
		slog.Bool("found", found),
	)
}

// LogError logs a failed store operation.
func (l *StoreLogger) LogError(ctx context.Context, err error, operation string) {
	l.logger.ErrorContext(ctx, "store error",
		slog.String("component", l.component),
		slog.String("operation", operation),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
		slog.String("error", err.Error()),
	)
}

// LogWarn logs a recoverable problem, such as a corrupt collection that was reset.
func (l *StoreLogger) LogWarn(ctx context.Context, msg string, fields map[string]any) {
	l.logger.WarnContext(ctx, msg, l.attrs(ctx, "warn", fields)...)
}
