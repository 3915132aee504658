package graymix

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for graymix and its sub-packages.
// By default, graymix produces no log output.
//
// Pass nil to restore the silent default. SetLogger is safe for concurrent use.
//
// Log levels used by graymix:
//   - [slog.LevelDebug]: per-image details (decoded layout, encoded size, file digests)
//   - [slog.LevelInfo]: section progress and completed jobs in the job runner
//   - [slog.LevelWarn]: operations skipped because of a size mismatch
//
// Example:
//
//	graymix.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger used by graymix.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
