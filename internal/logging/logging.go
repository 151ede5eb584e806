package logging

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
)

type Options struct {
	Level string
	JSON  bool
}

var def atomic.Value

func init() {
	def.Store(New(os.Stderr, Options{}))
}

// New builds a logger writing to w; the processor and handler take one
// of these instead of reaching for the process default.
func New(w io.Writer, opts Options) *slog.Logger {
	cfg := &slog.HandlerOptions{Level: parseLevel(opts.Level)}
	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(w, cfg)
	} else {
		h = slog.NewTextHandler(w, cfg)
	}
	return slog.New(h)
}

func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func Configure(opts Options) {
	def.Store(New(os.Stderr, opts))
}

func parseLevel(s string) slog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func L() *slog.Logger {
	l, _ := def.Load().(*slog.Logger)
	return l
}

func InitFromEnv() {
	lvl := os.Getenv("FIREHOSE_LOG_LEVEL")
	jsonStr := os.Getenv("FIREHOSE_LOG_JSON")
	json := false
	if b, err := strconv.ParseBool(strings.TrimSpace(jsonStr)); err == nil {
		json = b
	}
	Configure(Options{Level: lvl, JSON: json})
}
