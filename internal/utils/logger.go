package utils

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(NewLogger(os.Stdout, "info", "text"))
}

// NewLogger builds a slog.Logger from LOG_LEVEL / LOG_FORMAT style values.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SetLogger replaces the logger used by LogEvent and Logger.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger.Store(l)
	}
}

func Logger() *slog.Logger {
	return logger.Load()
}

// LogEvent prints standardized log line with module/action/request_id.
// Avoid logging sensitive payload; message should be summarized.
func LogEvent(requestID, module, action, message string) {
	Logger().Info(message,
		"module", strings.ToUpper(module),
		"action", action,
		"request_id", strings.TrimSpace(requestID),
	)
}

// LogWarn is LogEvent at warn level.
func LogWarn(requestID, module, action, message string) {
	Logger().Warn(message,
		"module", strings.ToUpper(module),
		"action", action,
		"request_id", strings.TrimSpace(requestID),
	)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
