// Package telemetry buffers the latest value of named performance metrics in a durable
// store and forwards each measurement to analytics sinks on a best-effort basis.
package telemetry

import (
	"context"
	"encoding/json"
	"math"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"waveify.dev/web/internal/observability"
)

// Metric is the latest recorded measurement for one metric name.
type Metric struct {
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"`
	URL       string  `json:"url"`
}

// Time returns the metric timestamp as a time.Time.
func (m Metric) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

type pathContextKey struct{}

// WithPath records the originating page path for metrics tracked with ctx.
func WithPath(ctx context.Context, path string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, pathContextKey{}, path)
}

// PathFromContext returns the page path stored by WithPath, reduced to its path component.
func PathFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	raw, _ := ctx.Value(pathContextKey{}).(string)
	return pathOnly(raw)
}

func pathOnly(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		if i := strings.IndexAny(raw, "?#"); i >= 0 {
			return raw[:i]
		}
		return raw
	}
	if u.Path == "" {
		return "/"
	}
	return u.Path
}

// Buffer is a latest-value snapshot store for named metrics. A nil Buffer is a no-op.
type Buffer struct {
	mu     sync.Mutex
	store  Store
	key    string
	sink   Sink
	logger *zap.Logger
	now    func() time.Time
}

// Option customises a Buffer.
type Option func(*Buffer)

// WithSink forwards every tracked metric to sink.
func WithSink(sink Sink) Option {
	return func(b *Buffer) {
		b.sink = sink
	}
}

// WithLogger sets the logger used for storage warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Buffer) {
		b.logger = logger
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(b *Buffer) {
		if now != nil {
			b.now = now
		}
	}
}

// WithKey overrides the store key holding the snapshot.
func WithKey(key string) Option {
	return func(b *Buffer) {
		if key = strings.TrimSpace(key); key != "" {
			b.key = key
		}
	}
}

// NewBuffer constructs a buffer persisting into store. A nil store keeps nothing but
// still forwards metrics to the configured sink.
func NewBuffer(store Store, opts ...Option) *Buffer {
	b := &Buffer{
		store: store,
		key:   StorageKey,
		now:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	b.logger = observability.OrNop(b.logger)
	return b
}

// Track records value under name, replacing any previous value for that name, then
// forwards it to the sink. Storage and sink failures are logged and never returned.
// Persistence is synchronous; sinks that do network I/O belong behind an AsyncSink.
func (b *Buffer) Track(ctx context.Context, name string, value float64) {
	if b == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		b.logger.Debug("telemetry: metric without name dropped")
		return
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		b.logger.Warn("telemetry: non-finite metric dropped", zap.String("metric", name))
		return
	}

	path := PathFromContext(ctx)
	metric := Metric{Value: value, Timestamp: b.now().UnixMilli(), URL: path}
	b.persist(ctx, name, metric)

	if b.sink == nil {
		return
	}
	event := Event{MetricName: name, MetricValue: value, PagePath: path}
	if err := b.sink.Forward(ctx, event); err != nil {
		b.logger.Warn("telemetry: forward metric", zap.String("metric", name), zap.Error(err))
	}
}

func (b *Buffer) persist(ctx context.Context, name string, metric Metric) {
	if b.store == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	metrics := b.readLocked(ctx)
	metrics[name] = metric
	data, err := json.Marshal(metrics)
	if err != nil {
		b.logger.Warn("telemetry: encode metrics", zap.String("metric", name), zap.Error(err))
		return
	}
	if err := b.store.Set(ctx, b.key, string(data)); err != nil {
		b.logger.Warn("telemetry: persist metric", zap.String("metric", name), zap.Error(err))
	}
}

// Summary returns every stored metric. Absent or corrupt storage yields an empty map.
func (b *Buffer) Summary(ctx context.Context) map[string]Metric {
	if b == nil || b.store == nil {
		return map[string]Metric{}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.readLocked(ctx)
}

func (b *Buffer) readLocked(ctx context.Context) map[string]Metric {
	raw, ok, err := b.store.Get(ctx, b.key)
	if err != nil {
		b.logger.Warn("telemetry: read metrics", zap.Error(err))
		return map[string]Metric{}
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return map[string]Metric{}
	}
	var metrics map[string]Metric
	if err := json.Unmarshal([]byte(raw), &metrics); err != nil {
		b.logger.Warn("telemetry: corrupt metrics snapshot", zap.Error(err))
		return map[string]Metric{}
	}
	if metrics == nil {
		metrics = map[string]Metric{}
	}
	return metrics
}

// Clear removes the stored snapshot.
func (b *Buffer) Clear(ctx context.Context) {
	if b == nil || b.store == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.store.Delete(ctx, b.key); err != nil {
		b.logger.Warn("telemetry: clear metrics", zap.Error(err))
	}
}

func (b *Buffer) clock() func() time.Time {
	if b == nil || b.now == nil {
		return time.Now
	}
	return b.now
}
