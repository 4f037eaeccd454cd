// Package slogx builds the process logger.
package slogx

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel reads a level name the way slog spells them ("debug", "WARN",
// "info+2"), also accepting "warning". Anything unparsable logs at info.
func ParseLevel(s string) slog.Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// New creates a text logger writing to w at the given level string.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

// Stderr is New on os.Stderr.
func Stderr(level string) *slog.Logger {
	return New(os.Stderr, level)
}
