package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Options selects the handler built by New.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	Debug  bool   // forces debug level
}

// New builds a logger writing to w and installs it as the slog default.
func New(w io.Writer, opt Options) *slog.Logger {
	level := ParseLevel(opt.Level)
	if opt.Debug {
		level = slog.LevelDebug
	}
	ho := &slog.HandlerOptions{Level: level, AddSource: opt.Debug}

	var h slog.Handler
	if strings.EqualFold(opt.Format, "json") {
		h = slog.NewJSONHandler(w, ho)
	} else {
		h = slog.NewTextHandler(w, ho)
	}
	l := slog.New(h)
	slog.SetDefault(l)
	return l
}

// ParseLevel converts a level name to slog.Level. Unknown names give info.
func ParseLevel(level string) slog.Level {
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
