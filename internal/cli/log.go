package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w, filtered at level. Timestamps
// are short-form with centiseconds so successive pass logs are comparable.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times an operation and logs its completion with the elapsed
// duration as a structured field. Single-goroutine use only.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the time elapsed since the tracker was created.
func (p *progress) done(msg string) {
	p.logger.Info(msg, "took", time.Since(p.start).Round(time.Millisecond))
}

type ctxKey struct{}

// withLogger attaches a logger to ctx for retrieval in command handlers.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the attached logger, or log.Default() when the
// context carries none, so commands always have somewhere to write.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
