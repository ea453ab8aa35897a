package nav

import (
	"path"
	"strings"

	"waveify.dev/web/internal/docs"
)

// Item represents a top-level navigation item.
type Item struct {
	Path  string // e.g. "/docs"
	Label string
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href   string
	Label  string
	Active bool
}

// Crumb represents a breadcrumb entry.
type Crumb struct {
	Href   string
	Label  string
	Active bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Path: "/", Label: "Home"},
	{Path: "/docs", Label: "Docs"},
	{Path: "/performance", Label: "Performance"},
}

// Build renders navigation items with active state given the current path.
func Build(currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:   it.Path,
			Label:  it.Label,
			Active: isActive(it.Path, currentPath),
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	// match exact or prefix boundary: "/docs" or "/docs/..."
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs builds breadcrumb entries from the current path.
// Rules:
// - Always start with Home
// - For known top-level sections, use the nav label
// - For deeper segments, use a prettified segment label
func Breadcrumbs(currentPath string) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	crumbs := []Crumb{{Href: "/", Label: "Home", Active: currentPath == "/"}}
	if currentPath == "/" {
		return crumbs
	}

	clean := path.Clean(currentPath)
	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	href := ""
	for i, seg := range parts {
		if seg == "" {
			continue
		}
		href += "/" + seg
		label := titleFromSegment(seg)
		if i == 0 {
			for _, it := range Main {
				if it.Path == href {
					label = it.Label
					break
				}
			}
		}
		crumbs = append(crumbs, Crumb{Href: href, Label: label, Active: i == len(parts)-1})
	}
	return crumbs
}

// DocsBreadcrumbs builds Home > Docs > Section > Page for a docs slug, using the
// navigation index for labels. Slugs missing from the index fall back to Breadcrumbs.
func DocsBreadcrumbs(idx *docs.Index, slug docs.Slug) []Crumb {
	section, item, ok := idx.Find(slug)
	if !ok {
		return Breadcrumbs(docs.Href(slug))
	}
	crumbs := []Crumb{
		{Href: "/", Label: "Home"},
		{Href: "/docs", Label: "Docs"},
	}
	if section.Title != "" && len(section.Items) > 0 && section.Items[0].Slug != slug {
		crumbs = append(crumbs, Crumb{Href: section.Items[0].Href, Label: section.Title})
	}
	return append(crumbs, Crumb{Href: item.Href, Label: item.Title, Active: true})
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	r := []rune(s)
	r[0] = toUpper(r[0])
	return string(r)
}

func toUpper(r rune) rune {
	// ASCII only is sufficient for slugs here
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
