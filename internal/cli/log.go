package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pkgtree/pkg/errors"
)

// newLogger creates a logger with timestamps formatted as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// debugf adapts l to the Logger func that library options take.
func debugf(l *log.Logger) func(string, ...any) {
	return func(format string, args ...any) {
		l.Debugf(format, args...)
	}
}

// reportDiagnostics logs each diagnostic as a warning tagged with its code.
func reportDiagnostics(l *log.Logger, diags []error) {
	for _, d := range diags {
		l.Warn(errors.UserMessage(d), "code", errors.GetCode(d))
	}
}

// LogHooks implements observability.TreeHooks by logging each stage at
// debug level with its duration.
type LogHooks struct {
	Logger *log.Logger
}

func (h LogHooks) OnLoadStart(_ context.Context, source string) {
	h.Logger.Debug("loading packages", "source", source)
}

func (h LogHooks) OnLoadComplete(_ context.Context, source string, packages int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("loading failed", "source", source, "err", err, "took", d.Round(time.Millisecond))
		return
	}
	h.Logger.Debugf("Loaded %d packages from %s (%s)", packages, source, d.Round(time.Millisecond))
}

func (h LogHooks) OnBuildComplete(_ context.Context, packages, edges, diagnostics int, d time.Duration) {
	h.Logger.Debugf("Built graph: %d packages, %d edges, %d diagnostics (%s)", packages, edges, diagnostics, d.Round(time.Millisecond))
}

func (h LogHooks) OnRenderComplete(_ context.Context, lines int, d time.Duration) {
	h.Logger.Debugf("Rendered %d lines (%s)", lines, d.Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, falling back to log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
