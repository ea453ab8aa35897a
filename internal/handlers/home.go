package handlers

import (
	"context"
	"errors"
	"html/template"

	"go.uber.org/zap"

	"waveify.dev/web/internal/lazy"
	"waveify.dev/web/internal/observability"
)

// SectionSpec places a home page section in the nominal layout.
type SectionSpec struct {
	Name   string
	Height float64
}

// HomeSections lists the home page sections top to bottom.
var HomeSections = []SectionSpec{
	{Name: "hero", Height: 560},
	{Name: "features", Height: 640},
	{Name: "showcase", Height: 720},
	{Name: "testimonials", Height: 480},
	{Name: "cta", Height: 320},
}

// Fold is the nominal first viewport used to decide which sections render inline.
var Fold = lazy.Rect{Width: 1280, Height: 800}

// SectionView is one home page slot: either rendered inline or a lazy placeholder.
type SectionView struct {
	Name     string
	Href     string
	Attrs    template.HTMLAttr
	Fragment *Fragment
}

// HomeData is the view model for the home page.
type HomeData struct {
	Sections []SectionView
}

// FragmentLoader loads the content of a named section.
type FragmentLoader func(ctx context.Context, name string) (Fragment, error)

// BuildHomeData lays the sections out under fold and observes each one. Sections that
// are visible in the first viewport are loaded and rendered inline; the rest become
// placeholders that the browser loads when they scroll into view.
func BuildHomeData(ctx context.Context, sections []SectionSpec, fold lazy.Rect, opts lazy.Options, load FragmentLoader) HomeData {
	vp := lazy.NewViewport(fold)
	watches := make([]*lazy.Watch, len(sections))
	slots := make([]*lazy.Boundary[Fragment], len(sections))
	y := fold.Y
	for i, s := range sections {
		name := s.Name
		box := lazy.Box{X: fold.X, Y: y, Width: fold.Width, Height: s.Height}
		watches[i] = vp.Observe(box, opts)
		slots[i] = lazy.Gate(ctx, watches[i], func(ctx context.Context) (Fragment, error) {
			return load(ctx, name)
		})
		y += s.Height
	}
	for _, w := range watches {
		if !w.Visible() {
			w.Stop()
		}
	}

	logger := observability.FromContext(ctx)
	data := HomeData{Sections: make([]SectionView, 0, len(sections))}
	for i, s := range sections {
		view := SectionView{Name: s.Name, Href: "/fragments/" + s.Name, Attrs: opts.Attrs()}
		frag, err := slots[i].Await(ctx)
		switch {
		case err == nil:
			view.Fragment = &frag
		case !errors.Is(err, lazy.ErrDetached):
			logger.Warn("home: inline section failed, deferring to client", zap.String("section", s.Name), zap.Error(err))
		}
		data.Sections = append(data.Sections, view)
	}
	return data
}
