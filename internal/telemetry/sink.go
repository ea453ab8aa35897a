package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"waveify.dev/web/internal/observability"
)

// Event is the analytics payload forwarded for each tracked metric.
type Event struct {
	MetricName  string  `json:"metric_name"`
	MetricValue float64 `json:"metric_value"`
	PagePath    string  `json:"page_path"`
}

// Sink receives tracked metrics. Implementations must be safe for concurrent use.
type Sink interface {
	Forward(ctx context.Context, event Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, event Event) error

// Forward implements Sink.
func (f SinkFunc) Forward(ctx context.Context, event Event) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

// MultiSink fans an event out to every non-nil sink and joins their errors.
type MultiSink []Sink

// Forward implements Sink.
func (m MultiSink) Forward(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Forward(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PrometheusSink exposes the latest value of each metric as a gauge.
type PrometheusSink struct {
	gauge *prometheus.GaugeVec
}

// NewPrometheusSink registers the vitals gauge with reg. A nil registerer leaves the
// gauge unregistered.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	return &PrometheusSink{
		gauge: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "waveify_web_vitals",
			Help: "Latest reported value per performance metric.",
		}, []string{"metric"}),
	}
}

// Forward implements Sink.
func (s *PrometheusSink) Forward(_ context.Context, event Event) error {
	if s == nil {
		return nil
	}
	s.gauge.WithLabelValues(event.MetricName).Set(event.MetricValue)
	return nil
}

const instrumentationName = "waveify.dev/web/internal/telemetry"

// OTelSink records metrics on an OpenTelemetry gauge.
type OTelSink struct {
	gauge metric.Float64Gauge
}

// NewOTelSink creates the gauge on meter, falling back to the global meter provider.
func NewOTelSink(meter metric.Meter) (*OTelSink, error) {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}
	gauge, err := meter.Float64Gauge("waveify.web.vital",
		metric.WithDescription("Latest reported value per performance metric."),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create otel gauge: %w", err)
	}
	return &OTelSink{gauge: gauge}, nil
}

// Forward implements Sink.
func (s *OTelSink) Forward(ctx context.Context, event Event) error {
	if s == nil {
		return nil
	}
	s.gauge.Record(ctx, event.MetricValue, metric.WithAttributes(
		attribute.String("metric_name", event.MetricName),
		attribute.String("page_path", event.PagePath),
	))
	return nil
}

// HTTPSink posts events as JSON to an analytics collector.
type HTTPSink struct {
	endpoint string
	http     *http.Client
	headers  map[string]string
}

// NewHTTPSink returns a sink posting to endpoint. An empty endpoint returns nil.
func NewHTTPSink(endpoint string, timeout time.Duration) *HTTPSink {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HTTPSink{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		headers:  map[string]string{},
	}
}

// WithHeader sets a header sent with every event, such as a measurement id.
func (s *HTTPSink) WithHeader(key, value string) *HTTPSink {
	if s != nil && strings.TrimSpace(key) != "" && value != "" {
		s.headers[key] = value
	}
	return s
}

// Forward implements Sink.
func (s *HTTPSink) Forward(ctx context.Context, event Event) error {
	if s == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("telemetry: encode event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telemetry: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("telemetry: post event: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("telemetry: analytics endpoint status %d", resp.StatusCode)
	}
	return nil
}

// ErrQueueFull is returned by AsyncSink when its queue has no room for another event.
var ErrQueueFull = errors.New("telemetry: forward queue full")

// ErrSinkClosed is returned by AsyncSink after Close.
var ErrSinkClosed = errors.New("telemetry: sink closed")

const defaultQueueSize = 256

type queuedEvent struct {
	ctx   context.Context
	event Event
}

// AsyncSink hands events to a single worker that forwards them to the wrapped sink, so
// callers never wait on a slow destination. Events arriving while the queue is full are
// rejected with ErrQueueFull.
type AsyncSink struct {
	next   Sink
	logger *zap.Logger
	queue  chan queuedEvent
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAsyncSink starts the worker draining into next. A nil next returns nil.
func NewAsyncSink(next Sink, size int, logger *zap.Logger) *AsyncSink {
	if next == nil {
		return nil
	}
	if size <= 0 {
		size = defaultQueueSize
	}
	s := &AsyncSink{
		next:   next,
		logger: observability.OrNop(logger),
		queue:  make(chan queuedEvent, size),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *AsyncSink) run() {
	defer close(s.done)
	for q := range s.queue {
		if err := s.next.Forward(q.ctx, q.event); err != nil {
			s.logger.Warn("telemetry: async forward", zap.String("metric", q.event.MetricName), zap.Error(err))
		}
	}
}

// Forward implements Sink. It enqueues without blocking; the request context is detached
// from cancellation so the event outlives the request that produced it.
func (s *AsyncSink) Forward(ctx context.Context, event Event) error {
	if s == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrSinkClosed
	}
	select {
	case s.queue <- queuedEvent{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events and waits until the queued ones have been forwarded.
func (s *AsyncSink) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	<-s.done
	return nil
}
