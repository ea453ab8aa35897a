package telemetry

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestBufferTrackLastWriteWins(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	buf := NewBuffer(store, WithClock(fixedClock(1700000000000)))
	ctx := WithPath(context.Background(), "/docs/introduction?ref=nav#top")

	buf.Track(ctx, "lcp", 3100)
	buf.Track(ctx, "lcp", 2200)
	buf.Track(ctx, "cls", 0.05)

	summary := buf.Summary(context.Background())
	require.Len(t, summary, 2)
	require.Equal(t, Metric{Value: 2200, Timestamp: 1700000000000, URL: "/docs/introduction"}, summary["lcp"])
	require.Equal(t, 0.05, summary["cls"].Value)

	raw, ok, err := store.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{
		"lcp": {"value": 2200, "timestamp": 1700000000000, "url": "/docs/introduction"},
		"cls": {"value": 0.05, "timestamp": 1700000000000, "url": "/docs/introduction"}
	}`, raw)
}

func TestBufferSummaryCorruptStore(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	store := NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), StorageKey, "{not json"))

	buf := NewBuffer(store, WithLogger(zap.New(core)))
	require.Empty(t, buf.Summary(context.Background()))
	require.Equal(t, 1, logs.FilterMessage("telemetry: corrupt metrics snapshot").Len())

	// A write over a corrupt snapshot starts a fresh one.
	buf.Track(context.Background(), "fcp", 900)
	require.Len(t, buf.Summary(context.Background()), 1)
}

func TestBufferClear(t *testing.T) {
	t.Parallel()

	buf := NewBuffer(NewMemoryStore())
	buf.Track(context.Background(), "ttfb", 120)
	require.Len(t, buf.Summary(context.Background()), 1)

	buf.Clear(context.Background())
	require.Empty(t, buf.Summary(context.Background()))
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("storage unavailable")
}
func (failingStore) Set(context.Context, string, string) error { return errors.New("quota exceeded") }
func (failingStore) Delete(context.Context, string) error      { return errors.New("storage unavailable") }

func TestBufferStorageFailuresDegrade(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	var forwarded []Event
	sink := SinkFunc(func(_ context.Context, e Event) error {
		forwarded = append(forwarded, e)
		return nil
	})
	buf := NewBuffer(failingStore{}, WithLogger(zap.New(core)), WithSink(sink))

	require.NotPanics(t, func() {
		buf.Track(context.Background(), "inp", 180)
		buf.Clear(context.Background())
	})
	require.Empty(t, buf.Summary(context.Background()))
	require.Equal(t, 1, logs.FilterMessage("telemetry: persist metric").Len())
	require.Equal(t, 1, logs.FilterMessage("telemetry: clear metrics").Len())
	require.Equal(t, []Event{{MetricName: "inp", MetricValue: 180}}, forwarded)
}

func TestBufferRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	buf := NewBuffer(NewMemoryStore())
	buf.Track(context.Background(), "  ", 1)
	buf.Track(context.Background(), "lcp", math.NaN())
	buf.Track(context.Background(), "lcp", math.Inf(1))
	require.Empty(t, buf.Summary(context.Background()))
}

func TestNilBufferIsNoop(t *testing.T) {
	t.Parallel()

	var buf *Buffer
	require.NotPanics(t, func() {
		buf.Track(context.Background(), "lcp", 1)
		buf.Clear(context.Background())
	})
	require.Empty(t, buf.Summary(context.Background()))
}

func TestBufferSinkErrorIsSwallowed(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	sink := SinkFunc(func(context.Context, Event) error { return errors.New("collector down") })
	buf := NewBuffer(NewMemoryStore(), WithLogger(zap.New(core)), WithSink(sink))

	buf.Track(context.Background(), "fid", 40)
	require.Len(t, buf.Summary(context.Background()), 1)
	require.Equal(t, 1, logs.FilterMessage("telemetry: forward metric").Len())
}

func TestBufferConcurrentTracksKeepEveryName(t *testing.T) {
	t.Parallel()

	buf := NewBuffer(NewMemoryStore())
	names := []string{"lcp", "fcp", "fid", "inp", "cls", "ttfb", "component_docsload"}

	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			buf.Track(context.Background(), name, 1)
		}(name)
	}
	wg.Wait()

	require.Len(t, buf.Summary(context.Background()), len(names))
}

func TestPathFromContext(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                        "",
		"/docs/api/rest?x=1":      "/docs/api/rest",
		"https://waveify.dev/a#b": "/a",
		"https://waveify.dev":     "/",
	}
	for in, want := range cases {
		require.Equal(t, want, PathFromContext(WithPath(context.Background(), in)), in)
	}
	require.Empty(t, PathFromContext(context.Background()))
}

func TestBufferLastWriteWinsProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("summary holds the final value per name", prop.ForAll(
		func(keys []int, values []float64) bool {
			buf := NewBuffer(NewMemoryStore())
			want := map[string]float64{}
			for i, k := range keys {
				if i >= len(values) {
					break
				}
				name := []string{"lcp", "fcp", "cls"}[k]
				buf.Track(context.Background(), name, values[i])
				want[name] = values[i]
			}
			got := buf.Summary(context.Background())
			if len(got) != len(want) {
				return false
			}
			for name, v := range want {
				if got[name].Value != v {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 2)),
		gen.SliceOf(gen.Float64Range(0, 10000)),
	))

	properties.TestingRun(t)
}
