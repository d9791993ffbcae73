package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jereyes4/Wahl-Chains/pkg/record"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stopwatch times the stages of a command. Stages are logged at debug
// level, the total at info level.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
	last   time.Time
}

func newStopwatch(l *log.Logger) *stopwatch {
	now := time.Now()
	return &stopwatch{logger: l, start: now, last: now}
}

// lap logs the time spent since the previous lap.
func (s *stopwatch) lap(stage string) {
	now := time.Now()
	s.logger.Debug("stage done", "stage", stage, "elapsed", now.Sub(s.last).Round(time.Millisecond))
	s.last = now
}

// done logs msg with keyvals and the total elapsed time.
func (s *stopwatch) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(s.start).Round(time.Millisecond))
	s.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// exampleLogger annotates the context logger with the example being
// processed.
func exampleLogger(ctx context.Context, ex *record.Example) *log.Logger {
	return loggerFromContext(ctx).With("example", ex.Index, "shape", ex.Shape.String())
}
