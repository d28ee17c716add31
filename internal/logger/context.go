package logger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type contextKey struct{}

var logContextKey = contextKey{}

// Phases of a run, used as the value of KeyPhase.
const (
	PhaseScan = "scan"
	PhaseCopy = "copy"
)

// LogContext holds the fields shared by every log line of one run.
type LogContext struct {
	RunID       string
	Phase       string
	Source      string
	Destination string
	StartTime   time.Time
}

// NewLogContext starts a run with a fresh run ID.
func NewLogContext(source, destination string) *LogContext {
	return &LogContext{
		RunID:       uuid.NewString(),
		Source:      source,
		Destination: destination,
		StartTime:   time.Now(),
	}
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	c := *lc
	return &c
}

// WithPhase returns a copy with the phase set
func (lc *LogContext) WithPhase(phase string) *LogContext {
	c := lc.Clone()
	if c != nil {
		c.Phase = phase
	}
	return c
}

// Elapsed returns the time since StartTime.
func (lc *LogContext) Elapsed() time.Duration {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return time.Since(lc.StartTime)
}

// EnterPhase returns ctx with its LogContext switched to phase. A ctx without
// a LogContext is returned unchanged.
func EnterPhase(ctx context.Context, phase string) context.Context {
	lc := FromContext(ctx)
	if lc == nil {
		return ctx
	}
	return WithContext(ctx, lc.WithPhase(phase))
}
