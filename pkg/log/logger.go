// Package log builds the service's JSON logger and the typed attribute
// helpers the rest of the codebase logs with.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var levelNames = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// New constructs the service logger at info level
func New(service, env, version string) *slog.Logger {
	return NewWithLevel(service, env, version, slog.LevelInfo)
}

// NewWithLevel constructs a JSON logger writing to stdout, tagged with
// the service identity on every record
func NewWithLevel(
	service, env, version string, lvl slog.Level,
) *slog.Logger {
	return newLogger(os.Stdout, service, env, version, lvl)
}

// ParseLevel resolves a configured level name, defaulting to info when
// the name is unknown
func ParseLevel(name string) slog.Level {
	if lvl, ok := levelNames[strings.ToLower(name)]; ok {
		return lvl
	}
	return slog.LevelInfo
}

func newLogger(
	w io.Writer, service, env, version string, lvl slog.Level,
) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(h).With(
		slog.String("service", service),
		slog.String("env", env),
		slog.String("version", version))
}
