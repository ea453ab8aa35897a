// Package docs maps documentation slugs to lazily loaded content and resolves them
// for the docs viewer.
package docs

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"sort"
	"strings"
)

// Slug identifies a documentation page. Matching is exact and case-sensitive.
type Slug = string

// Heading is one entry of a page outline.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// Descriptor is the resolved content of a documentation page.
type Descriptor struct {
	Title       string
	Description string
	Content     template.HTML
	Headings    []Heading
}

// Loader produces a page descriptor on demand.
type Loader func(ctx context.Context) (Descriptor, error)

// Entry registers a loader for a slug, with metadata available without loading.
type Entry struct {
	Slug        Slug
	Title       string
	Description string
	Load        Loader
}

// Registry is an immutable slug to loader mapping.
type Registry struct {
	entries map[Slug]Entry
	order   []Slug
}

// NewRegistry builds a registry. Empty slugs, missing loaders and duplicates are rejected.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{
		entries: make(map[Slug]Entry, len(entries)),
		order:   make([]Slug, 0, len(entries)),
	}
	for _, e := range entries {
		if strings.TrimSpace(e.Slug) == "" {
			return nil, errors.New("docs: entry with empty slug")
		}
		if e.Load == nil {
			return nil, fmt.Errorf("docs: entry %q has no loader", e.Slug)
		}
		if _, dup := r.entries[e.Slug]; dup {
			return nil, fmt.Errorf("docs: duplicate slug %q", e.Slug)
		}
		r.entries[e.Slug] = e
		r.order = append(r.order, e.Slug)
	}
	return r, nil
}

// Lookup returns the entry registered for slug.
func (r *Registry) Lookup(slug Slug) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	e, ok := r.entries[slug]
	return e, ok
}

// Slugs returns registered slugs in registration order.
func (r *Registry) Slugs() []Slug {
	if r == nil {
		return nil
	}
	out := make([]Slug, len(r.order))
	copy(out, r.order)
	return out
}

// Len reports the number of registered entries.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// DivergenceError reports slugs the navigation index and the registry disagree on.
type DivergenceError struct {
	// Unregistered are index slugs with no registered loader; their pages would 404.
	Unregistered []Slug
	// Unlisted are registered slugs that no navigation item links to.
	Unlisted []Slug
}

func (e *DivergenceError) Error() string {
	var parts []string
	if len(e.Unregistered) > 0 {
		parts = append(parts, "missing content for "+strings.Join(e.Unregistered, ", "))
	}
	if len(e.Unlisted) > 0 {
		parts = append(parts, "not in navigation: "+strings.Join(e.Unlisted, ", "))
	}
	return "docs: navigation and registry diverge: " + strings.Join(parts, "; ")
}

// Validate checks that every index slug is registered and every registered slug is
// listed. It returns a *DivergenceError when they differ.
func Validate(r *Registry, idx *Index) error {
	listed := map[Slug]struct{}{}
	var unregistered []Slug
	for _, slug := range idx.AllSlugs() {
		listed[slug] = struct{}{}
		if _, ok := r.Lookup(slug); !ok {
			unregistered = append(unregistered, slug)
		}
	}
	var unlisted []Slug
	for _, slug := range r.Slugs() {
		if _, ok := listed[slug]; !ok {
			unlisted = append(unlisted, slug)
		}
	}
	if len(unregistered) == 0 && len(unlisted) == 0 {
		return nil
	}
	sort.Strings(unlisted)
	return &DivergenceError{Unregistered: unregistered, Unlisted: unlisted}
}
