// Package lazy gates rendering of heavy page sections on viewport visibility.
//
// A Viewport tracks observed elements. Each observation moves from Pending to Visible
// exactly once, the first time the element's visible fraction inside the margin-expanded
// root reaches the configured threshold. Visible is absorbing: scrolling the element back
// out of view does not revert it, and the observation is dropped as soon as it latches.
package lazy

import (
	"fmt"
	"html/template"
	"strconv"
	"sync"
)

const (
	// DefaultThreshold is the visible fraction that triggers rendering.
	DefaultThreshold = 0.1
	// DefaultRootMargin expands the viewport so content is requested slightly early.
	DefaultRootMargin = 50.0
)

// State is the lifecycle of one observed element.
type State int

const (
	NotObserved State = iota
	Pending
	Visible
)

func (s State) String() string {
	switch s {
	case NotObserved:
		return "not-observed"
	case Pending:
		return "pending"
	case Visible:
		return "visible"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// Options configures when an element counts as visible.
type Options struct {
	Threshold  float64
	RootMargin Margin
}

// DefaultOptions returns a 10% threshold with a 50px root margin on every side.
func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold, RootMargin: Uniform(DefaultRootMargin)}
}

func (o Options) normalized() Options {
	if o.Threshold < 0 {
		o.Threshold = 0
	}
	if o.Threshold > 1 {
		o.Threshold = 1
	}
	return o
}

// Attrs renders the options as data attributes for a server-rendered placeholder.
func (o Options) Attrs() template.HTMLAttr {
	o = o.normalized()
	return template.HTMLAttr(fmt.Sprintf(`data-lazy-threshold="%s" data-lazy-root-margin="%s"`,
		strconv.FormatFloat(o.Threshold, 'f', -1, 64), template.HTMLEscapeString(o.RootMargin.String())))
}

// Element is anything whose layout box can be sampled.
type Element interface {
	Bounds() Rect
}

// Box is a fixed element.
type Box Rect

// Bounds implements Element.
func (b Box) Bounds() Rect { return Rect(b) }

// Viewport evaluates observed elements against a root box.
type Viewport struct {
	mu      sync.Mutex
	root    Rect
	watches map[*Watch]struct{}
}

// NewViewport creates a viewport with the given root box.
func NewViewport(root Rect) *Viewport {
	return &Viewport{root: root, watches: make(map[*Watch]struct{})}
}

// Watch is one observation. C yields false on attach, then true once when the element
// becomes visible, and is closed afterwards. It is also closed by Stop.
type Watch struct {
	C <-chan bool

	ch    chan bool
	el    Element
	opts  Options
	state State
	vp    *Viewport
}

// Observe starts observing el. A nil element yields a watch in NotObserved with a closed
// channel, so callers that lost their element before attaching need no special casing.
func (v *Viewport) Observe(el Element, opts Options) *Watch {
	ch := make(chan bool, 2)
	w := &Watch{C: ch, ch: ch, el: el, opts: opts.normalized(), vp: v}
	if el == nil || v == nil {
		close(ch)
		return w
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	w.state = Pending
	ch <- false
	v.watches[w] = struct{}{}
	v.evaluateLocked(w)
	return w
}

// Scroll moves the root box and re-evaluates pending observations.
func (v *Viewport) Scroll(root Rect) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.root = root
	for w := range v.watches {
		v.evaluateLocked(w)
	}
}

// Refresh re-evaluates pending observations, e.g. after a layout change moved elements.
func (v *Viewport) Refresh() {
	v.Scroll(v.Root())
}

// Root returns the current root box.
func (v *Viewport) Root() Rect {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.root
}

// Observed returns the number of pending observations.
func (v *Viewport) Observed() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.watches)
}

func (v *Viewport) evaluateLocked(w *Watch) {
	if w.state != Pending {
		return
	}
	fraction, touching := VisibleFraction(w.el.Bounds(), v.root.Expand(w.opts.RootMargin))
	if !touching || fraction < w.opts.Threshold {
		return
	}
	if w.opts.Threshold > 0 && fraction == 0 {
		return
	}
	w.state = Visible
	w.ch <- true
	close(w.ch)
	delete(v.watches, w)
}

// State returns the current lifecycle state.
func (w *Watch) State() State {
	if w.vp == nil {
		return w.state
	}
	w.vp.mu.Lock()
	defer w.vp.mu.Unlock()
	return w.state
}

// Visible reports whether the render decision has latched.
func (w *Watch) Visible() bool {
	return w.State() == Visible
}

// Stop ends a pending observation, as when the owning component unmounts. It is safe to
// call more than once and after the element became visible.
func (w *Watch) Stop() {
	if w.vp == nil {
		return
	}
	w.vp.mu.Lock()
	defer w.vp.mu.Unlock()
	if _, ok := w.vp.watches[w]; !ok {
		return
	}
	delete(w.vp.watches, w)
	close(w.ch)
}
