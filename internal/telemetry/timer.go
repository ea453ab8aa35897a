package telemetry

import (
	"context"
	"strings"
	"time"
)

const componentPrefix = "component_"

// Timer measures elapsed time around a labeled operation.
type Timer struct {
	buffer *Buffer
	name   string
	start  time.Time
	now    func() time.Time
}

// NewTimer starts a stopwatch for label. The buffer may be nil, in which case End only
// measures.
func NewTimer(buffer *Buffer, label string) *Timer {
	now := buffer.clock()
	return &Timer{
		buffer: buffer,
		name:   ComponentMetric(label),
		start:  now(),
		now:    now,
	}
}

// ComponentMetric returns the metric name a timer with label records under.
func ComponentMetric(label string) string {
	return componentPrefix + strings.ToLower(strings.TrimSpace(label))
}

// Name returns the metric name recorded by End.
func (t *Timer) Name() string {
	return t.name
}

// End returns the milliseconds elapsed since the timer started and tracks them. Calling
// End again measures from the same start.
func (t *Timer) End(ctx context.Context) float64 {
	elapsed := float64(t.now().Sub(t.start)) / float64(time.Millisecond)
	if elapsed < 0 {
		elapsed = 0
	}
	t.buffer.Track(ctx, t.name, elapsed)
	return elapsed
}
