package docs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"waveify.dev/web/internal/observability"
	"waveify.dev/web/internal/telemetry"
)

// ErrNotFound is returned when no content exists for a slug.
var ErrNotFound = errors.New("docs: not found")

// LoadError reports a registered page whose loader failed. It matches ErrNotFound so
// callers that only distinguish found from not found keep working.
type LoadError struct {
	Slug Slug
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("docs: load %q: %v", e.Slug, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is reports ErrNotFound as a match.
func (e *LoadError) Is(target error) bool { return target == ErrNotFound }

// timerLabel names the component timer wrapped around every load.
const timerLabel = "DocsLoad"

// Resolver resolves slugs to descriptors through a Registry.
type Resolver struct {
	registry *Registry
	logger   *zap.Logger
	buffer   *telemetry.Buffer
	ttl      time.Duration
	now      func() time.Time

	mu    sync.RWMutex
	cache map[Slug]cachedDescriptor
}

type cachedDescriptor struct {
	desc    Descriptor
	expires time.Time
}

// ResolverOption customises a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the logger for load failures.
func WithLogger(logger *zap.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = logger }
}

// WithTelemetry times every load into buf.
func WithTelemetry(buf *telemetry.Buffer) ResolverOption {
	return func(r *Resolver) { r.buffer = buf }
}

// WithCacheTTL keeps successful loads for d. Zero disables caching.
func WithCacheTTL(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d < 0 {
			d = 0
		}
		r.ttl = d
	}
}

// NewResolver constructs a resolver over registry.
func NewResolver(registry *Registry, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		registry: registry,
		now:      time.Now,
		cache:    map[Slug]cachedDescriptor{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.logger = observability.OrNop(r.logger)
	return r
}

// Registry returns the underlying registry.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Resolve returns the descriptor for slug. Unknown slugs yield ErrNotFound; loader
// failures are logged and returned as *LoadError.
func (r *Resolver) Resolve(ctx context.Context, slug Slug) (Descriptor, error) {
	entry, ok := r.registry.Lookup(slug)
	if !ok {
		return Descriptor{}, ErrNotFound
	}
	if desc, ok := r.cached(slug); ok {
		return desc, nil
	}

	timer := telemetry.NewTimer(r.buffer, timerLabel)
	desc, err := safeLoad(ctx, entry.Load)
	timer.End(ctx)
	if err != nil {
		r.logger.Warn("docs: load failed", zap.String("slug", slug), zap.Error(err))
		return Descriptor{}, &LoadError{Slug: slug, Err: err}
	}
	if desc.Title == "" {
		desc.Title = entry.Title
	}
	if desc.Description == "" {
		desc.Description = entry.Description
	}
	r.store(slug, desc)
	return desc, nil
}

func safeLoad(ctx context.Context, load Loader) (desc Descriptor, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("loader panic: %v", rec)
		}
	}()
	return load(ctx)
}

func (r *Resolver) cached(slug Slug) (Descriptor, bool) {
	if r.ttl <= 0 {
		return Descriptor{}, false
	}
	r.mu.RLock()
	entry, ok := r.cache[slug]
	r.mu.RUnlock()
	if !ok || r.now().After(entry.expires) {
		return Descriptor{}, false
	}
	return cloneDescriptor(entry.desc), true
}

func (r *Resolver) store(slug Slug, desc Descriptor) {
	if r.ttl <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[slug] = cachedDescriptor{desc: cloneDescriptor(desc), expires: r.now().Add(r.ttl)}
}

func cloneDescriptor(src Descriptor) Descriptor {
	cp := src
	if src.Headings != nil {
		cp.Headings = append([]Heading(nil), src.Headings...)
	}
	return cp
}
