package lazy

import (
	"context"
	"errors"
	"sync"
)

// ErrDetached is reported by a gated boundary whose watch stopped before it became visible.
var ErrDetached = errors.New("lazy: element detached before it became visible")

// Phase is the render phase of a Boundary.
type Phase int

const (
	// Placeholder is rendered until the load resolves.
	Placeholder Phase = iota
	// Loaded means the value is available.
	Loaded
	// Failed means the load returned an error.
	Failed
)

func (p Phase) String() string {
	switch p {
	case Placeholder:
		return "placeholder"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Boundary is a two-phase render slot: Placeholder until its future resolves, then
// Loaded or Failed. The transition happens once.
type Boundary[T any] struct {
	done chan struct{}

	mu    sync.RWMutex
	phase Phase
	value T
	err   error
}

func newBoundary[T any]() *Boundary[T] {
	return &Boundary[T]{done: make(chan struct{})}
}

// Load starts load in the background and returns a boundary in the Placeholder phase.
func Load[T any](ctx context.Context, load func(context.Context) (T, error)) *Boundary[T] {
	b := newBoundary[T]()
	go func() {
		v, err := load(ctx)
		b.resolve(v, err)
	}()
	return b
}

// Gate defers load until w latches visible. If the watch stops first, or was never
// attached, the boundary fails with ErrDetached.
func Gate[T any](ctx context.Context, w *Watch, load func(context.Context) (T, error)) *Boundary[T] {
	b := newBoundary[T]()
	go func() {
		for {
			select {
			case visible, ok := <-w.C:
				if !ok {
					var zero T
					b.resolve(zero, ErrDetached)
					return
				}
				if visible {
					v, err := load(ctx)
					b.resolve(v, err)
					return
				}
			case <-ctx.Done():
				var zero T
				b.resolve(zero, ctx.Err())
				return
			}
		}
	}()
	return b
}

// Ready returns a boundary already in the Loaded phase.
func Ready[T any](v T) *Boundary[T] {
	b := newBoundary[T]()
	b.resolve(v, nil)
	return b
}

func (b *Boundary[T]) resolve(v T, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.phase != Placeholder {
		return
	}
	if err != nil {
		b.phase = Failed
		b.err = err
	} else {
		b.phase = Loaded
		b.value = v
	}
	close(b.done)
}

// Phase returns the current phase.
func (b *Boundary[T]) Phase() Phase {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.phase
}

// Done is closed when the boundary leaves the Placeholder phase.
func (b *Boundary[T]) Done() <-chan struct{} { return b.done }

// Value returns the loaded value, if any.
func (b *Boundary[T]) Value() (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.value, b.phase == Loaded
}

// Await blocks until the boundary resolves or ctx ends.
func (b *Boundary[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-b.done:
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.value, b.err
}
