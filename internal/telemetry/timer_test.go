package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimerEndTracksComponentMetric(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(1_000)
	clock := func() time.Time { return now }
	buf := NewBuffer(NewMemoryStore(), WithClock(clock))

	timer := NewTimer(buf, "DocsLoad")
	require.Equal(t, "component_docsload", timer.Name())

	now = now.Add(42 * time.Millisecond)
	require.InDelta(t, 42.0, timer.End(context.Background()), 1e-9)

	now = now.Add(8 * time.Millisecond)
	require.InDelta(t, 50.0, timer.End(context.Background()), 1e-9)

	summary := buf.Summary(context.Background())
	require.Len(t, summary, 1)
	require.InDelta(t, 50.0, summary["component_docsload"].Value, 1e-9)
}

func TestTimerWithoutBuffer(t *testing.T) {
	t.Parallel()

	timer := NewTimer(nil, "Hero")
	require.GreaterOrEqual(t, timer.End(context.Background()), 0.0)
}
