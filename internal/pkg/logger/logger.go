package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Initialize creates and configures the default logger
func Initialize(env string) *slog.Logger {
	return InitializeWithOutput(env, "", os.Stderr)
}

// InitializeWithOutput configures the default logger writing to out.
// An empty level keeps the environment default (info in production, debug otherwise).
func InitializeWithOutput(env string, level string, out io.Writer) *slog.Logger {
	var handler slog.Handler

	if env == "production" {
		// JSON logging for production
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level:     parseLevel(level, slog.LevelInfo),
			AddSource: false,
		})
	} else {
		// Pretty text logging for development
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{
			Level:     parseLevel(level, slog.LevelDebug),
			AddSource: true,
		})
	}

	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)

	return defaultLogger
}

// Get returns the default logger instance
func Get() *slog.Logger {
	if defaultLogger == nil {
		return Initialize("development")
	}
	return defaultLogger
}

// NewServiceLogger creates a logger for a specific service
func NewServiceLogger(serviceName string) *slog.Logger {
	return Get().With(slog.String("service", serviceName))
}

func parseLevel(level string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
