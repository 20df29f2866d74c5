package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

type key int

const runKey key = 0

// WithRunID tags the context with the identifier of the current batch run.
// Every scraper and processor log line carries it, so a single scheduled
// invocation can be isolated in the logs.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runKey, id)
}

func GetRunID(ctx context.Context) string {
	if id, ok := ctx.Value(runKey).(string); ok {
		return id
	}
	return "unknown"
}

type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ctx.Value(runKey).(string); ok && id != "" {
		r.AddAttrs(slog.String("run_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

// NewRunWriter opens a timestamped log file under dir and returns a writer
// that duplicates output to stdout. Callers fall back to plain stdout when
// the file cannot be created.
func NewRunWriter(dir string, now time.Time) (io.Writer, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}

	name := "bibleproject_scrape_" + now.Format("20060102_150405") + ".log"
	path := filepath.Clean(filepath.Join(dir, name))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 -- path is from application config, not user input
	if err != nil {
		return nil, err
	}
	return io.MultiWriter(os.Stdout, f), nil
}
