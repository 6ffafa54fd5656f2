package logger_i

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/akolanti/LessonRAG/internal/config"
)

type Logger struct {
	inner *slog.Logger
}

// Init installs the process logger. Dev gets the text handler at debug level,
// prod gets JSON at the configured level (info when unset).
func Init(cfg config.LogConfig) {
	InitWriter(cfg, os.Stdout)
}

func InitWriter(cfg config.LogConfig, w io.Writer) {
	options := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level, slog.LevelDebug),
	}

	var handler slog.Handler
	if cfg.Prod {
		options.Level = parseLevel(cfg.Level, config.LOG_LEVEL_PROD)
		handler = slog.NewJSONHandler(w, options)
	} else {
		handler = slog.NewTextHandler(w, options)
	}
	slog.SetDefault(slog.New(handler))
}

func parseLevel(s string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}

func NewLogger(section string) *Logger {
	return &Logger{
		inner: slog.Default().With("component", section),
	}
}

func (l *Logger) Info(msg string, args ...any) {
	l.inner.Info(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(slog.LevelError, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(slog.LevelWarn, msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(slog.LevelDebug, msg, args...)
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	if !l.inner.Enabled(context.Background(), level) {
		return
	}
	l.inner.Log(context.Background(), level, msg, args...)
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		inner: l.inner.With(args...),
	}
}

// WithContext tags the logger with the trace id carried by ctx, if any.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}
	if trace, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok && trace != "" {
		return l.With("traceId", trace)
	}
	return l
}
