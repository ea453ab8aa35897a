package handlers

import (
	"context"
	"errors"
)

// ErrUnknownFragment is returned for a section name with no content.
var ErrUnknownFragment = errors.New("handlers: unknown fragment")

// Fragment is the content of one lazily rendered home page section.
type Fragment struct {
	Name  string
	Title string
	Lead  string
	Items []FragmentItem
}

// FragmentItem is a card inside a fragment.
type FragmentItem struct {
	Title string
	Body  string
}

var fragmentCatalog = map[string]Fragment{
	"hero": {
		Name:  "hero",
		Title: "Animated banners in one URL",
		Lead:  "Waveify turns a few parameters into a smooth, lightweight SVG wave you can drop into any page.",
	},
	"features": {
		Name:  "features",
		Title: "Why Waveify",
		Items: []FragmentItem{
			{Title: "Zero JavaScript", Body: "Banners are pure SVG with CSS motion."},
			{Title: "Edge cached", Body: "Every URL renders once and is served from the edge."},
			{Title: "Accessible", Body: "Reduced-motion preferences are honored automatically."},
		},
	},
	"showcase": {
		Name:  "showcase",
		Title: "Presets",
		Items: []FragmentItem{
			{Title: "Ocean", Body: "Deep blues with slow, wide swells."},
			{Title: "Sunset", Body: "Warm gradients and gentle ripples."},
			{Title: "Aurora", Body: "Layered greens and violets in constant drift."},
		},
	},
	"testimonials": {
		Name:  "testimonials",
		Title: "Loved by maintainers",
		Items: []FragmentItem{
			{Title: "Open source READMEs", Body: "A banner at the top of the README without a build step."},
			{Title: "Product launches", Body: "Landing pages with motion that never blocks rendering."},
		},
	},
	"cta": {
		Name:  "cta",
		Title: "Make your first banner",
		Lead:  "Read the quick start and embed a banner in under five minutes.",
	},
}

// LoadFragment returns the named fragment.
func LoadFragment(ctx context.Context, name string) (Fragment, error) {
	if err := ctx.Err(); err != nil {
		return Fragment{}, err
	}
	f, ok := fragmentCatalog[name]
	if !ok {
		return Fragment{}, ErrUnknownFragment
	}
	f.Items = append([]FragmentItem(nil), f.Items...)
	return f, nil
}
