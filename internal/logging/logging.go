// Package logging configures the structured logger shared by the CLI.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// RedactedValue is the canonical placeholder used for sensitive fields in logs.
const RedactedValue = "[REDACTED]"

// ParseLevel maps debug, info, warn and error (case-insensitive) to a slog
// level. An empty string selects warn.
func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("unknown log level %q", raw)
	}
}

// Setup returns a text logger writing to w at the given level. Every line
// carries the service name. Standard output is left to command results, so
// callers pass stderr.
func Setup(service string, level slog.Level, w io.Writer) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			if attr.Key == slog.LevelKey {
				return slog.String("severity", strings.ToUpper(attr.Value.String()))
			}
			return attr
		},
	})
	return slog.New(handler).With(slog.String("service", strings.TrimSpace(service)))
}

// MaskValue returns the canonical redacted placeholder for non-empty values.
// Empty values are returned unchanged so their absence stays visible.
func MaskValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return value
	}
	return RedactedValue
}

// MaskField returns a slog.Attr with the value redacted.
func MaskField(key, value string) slog.Attr {
	return slog.String(key, MaskValue(value))
}
