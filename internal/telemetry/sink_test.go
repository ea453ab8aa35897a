package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestHTTPSinkPostsEvent(t *testing.T) {
	t.Parallel()

	type captured struct {
		method, contentType, measurement string
		event                            Event
	}
	received := make(chan captured, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := captured{
			method:      r.Method,
			contentType: r.Header.Get("Content-Type"),
			measurement: r.Header.Get("X-Measurement-Id"),
		}
		_ = json.NewDecoder(r.Body).Decode(&c.event)
		received <- c
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	sink := NewHTTPSink(srv.URL, time.Second).WithHeader("X-Measurement-Id", "G-TEST")
	event := Event{MetricName: "lcp", MetricValue: 2100, PagePath: "/docs/introduction"}
	require.NoError(t, sink.Forward(context.Background(), event))

	got := <-received
	require.Equal(t, http.MethodPost, got.method)
	require.Equal(t, "application/json", got.contentType)
	require.Equal(t, "G-TEST", got.measurement)
	require.Equal(t, event, got.event)
}

func TestHTTPSinkStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	err := NewHTTPSink(srv.URL, time.Second).Forward(context.Background(), Event{MetricName: "lcp"})
	require.ErrorContains(t, err, "status 502")
}

func TestHTTPSinkEmptyEndpointIsNil(t *testing.T) {
	t.Parallel()

	sink := NewHTTPSink(" ", 0)
	require.Nil(t, sink)
	require.NoError(t, sink.Forward(context.Background(), Event{}))
}

func TestPrometheusSinkSetsGauge(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink := NewPrometheusSink(reg)
	require.NoError(t, sink.Forward(context.Background(), Event{MetricName: "lcp", MetricValue: 1000}))
	require.NoError(t, sink.Forward(context.Background(), Event{MetricName: "lcp", MetricValue: 2400}))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	require.Equal(t, "waveify_web_vitals", families[0].GetName())
	metrics := families[0].GetMetric()
	require.Len(t, metrics, 1)
	require.Equal(t, "lcp", metrics[0].GetLabel()[0].GetValue())
	require.Equal(t, 2400.0, metrics[0].GetGauge().GetValue())
}

func TestOTelSinkRecords(t *testing.T) {
	t.Parallel()

	sink, err := NewOTelSink(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	require.NoError(t, sink.Forward(context.Background(), Event{MetricName: "cls", MetricValue: 0.02}))
}

func TestMultiSinkJoinsErrors(t *testing.T) {
	t.Parallel()

	calls := 0
	ok := SinkFunc(func(context.Context, Event) error { calls++; return nil })
	bad := SinkFunc(func(context.Context, Event) error { calls++; return errors.New("down") })

	err := MultiSink{ok, nil, bad, ok}.Forward(context.Background(), Event{MetricName: "fcp"})
	require.ErrorContains(t, err, "down")
	require.Equal(t, 3, calls)
}

func TestAsyncSinkTrackDoesNotWaitOnSlowCollector(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	received := make(chan Event, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		var e Event
		_ = json.NewDecoder(r.Body).Decode(&e)
		received <- e
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	async := NewAsyncSink(NewHTTPSink(srv.URL, 5*time.Second), 4, nil)
	buf := NewBuffer(NewMemoryStore(), WithSink(async))
	ctx, cancel := context.WithCancel(WithPath(context.Background(), "/docs/introduction"))

	start := time.Now()
	elapsed := NewTimer(buf, "DocsLoad").End(ctx)
	require.Less(t, time.Since(start), 500*time.Millisecond)
	require.GreaterOrEqual(t, elapsed, 0.0)
	require.Contains(t, buf.Summary(context.Background()), "component_docsload")

	// The request finishing must not abort the queued post.
	cancel()
	close(release)
	select {
	case e := <-received:
		require.Equal(t, "component_docsload", e.MetricName)
		require.Equal(t, "/docs/introduction", e.PagePath)
	case <-time.After(5 * time.Second):
		t.Fatal("event never reached the collector")
	}
	require.NoError(t, async.Close())
}

func TestAsyncSinkDropsWhenFull(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	var mu sync.Mutex
	var forwarded []string
	next := SinkFunc(func(_ context.Context, e Event) error {
		<-release
		mu.Lock()
		forwarded = append(forwarded, e.MetricName)
		mu.Unlock()
		return nil
	})
	core, logs := observer.New(zap.WarnLevel)
	async := NewAsyncSink(next, 1, nil)
	buf := NewBuffer(NewMemoryStore(), WithSink(async), WithLogger(zap.New(core)))

	// The worker holds one event and the queue one more; the rest are dropped.
	buf.Track(context.Background(), "a", 1)
	require.Eventually(t, func() bool { return len(async.queue) == 0 }, time.Second, time.Millisecond)
	buf.Track(context.Background(), "b", 2)
	buf.Track(context.Background(), "c", 3)
	buf.Track(context.Background(), "d", 4)

	require.Len(t, buf.Summary(context.Background()), 4)
	dropped := logs.FilterMessage("telemetry: forward metric").All()
	require.Len(t, dropped, 2)
	for _, entry := range dropped {
		require.Equal(t, ErrQueueFull.Error(), entry.ContextMap()["error"])
	}

	close(release)
	require.NoError(t, async.Close())
	require.Equal(t, []string{"a", "b"}, forwarded)
	require.ErrorIs(t, async.Forward(context.Background(), Event{MetricName: "late"}), ErrSinkClosed)
}

func TestAsyncSinkNilSafe(t *testing.T) {
	t.Parallel()

	async := NewAsyncSink(nil, 0, nil)
	require.Nil(t, async)
	require.NoError(t, async.Forward(context.Background(), Event{MetricName: "lcp"}))
	require.NoError(t, async.Close())
}
