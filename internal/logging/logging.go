package logging

import (
	"io"
	"log/slog"
	"os"
)

// Options selects the sinks a logger writes to besides stderr.
type Options struct {
	Level   string
	File    string
	LokiURL string
	Job     string
}

// New creates a *slog.Logger writing JSON to stderr and optionally to a file and
// a Loki push endpoint. It also sets the logger as the slog default. The returned
// cleanup func flushes and closes the extra sinks; callers must defer it.
func New(opts Options) (*slog.Logger, func(), error) {
	writers := []io.Writer{os.Stderr}
	var closers []io.Closer

	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, f)
		closers = append(closers, f)
	}

	if lw := NewLokiWriter(opts.LokiURL, opts.Job); lw != nil {
		writers = append(writers, lw)
		closers = append(closers, lw)
	}

	cleanup := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}

	handler := slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: parseLevel(opts.Level)})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, cleanup, nil
}

func parseLevel(s string) slog.Level {
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
