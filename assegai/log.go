package assegai

import (
	"context"
	"log/slog"
)

// LogLevel identifies the severity of an agent log line.
type LogLevel string

// Log levels understood by the proxy UI. Anything else is treated as info.
const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

type logEntry struct {
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Log writes a line to the local logger and forwards it to the proxy so it
// shows up in the operator UI. Forwarding is best effort: an unreachable
// proxy is noted locally and never turns into an error for the caller.
func (c *Client) Log(ctx context.Context, level LogLevel, message string, data map[string]any) {
	attrs := make([]any, 0, len(data)*2)
	for key, value := range data {
		attrs = append(attrs, key, value)
	}
	c.log.Log(ctx, slogLevel(level), message, attrs...)

	err := c.transport.Post(ctx, "/agent/log", logEntry{
		Level:   string(level),
		Message: message,
		Data:    data,
	}, nil)
	if err != nil {
		c.log.Warn("failed to forward log to proxy", "error", err)
	}
}

func slogLevel(level LogLevel) slog.Level {
	switch level {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
