package docs

const hrefPrefix = "/docs/"

// Item is a navigation link to a documentation page.
type Item struct {
	Title string
	Href  string
	Slug  Slug
}

// Section groups navigation items under a heading.
type Section struct {
	Title string
	Items []Item
}

// Doc builds an item whose href is derived from its slug.
func Doc(title string, slug Slug) Item {
	return Item{Title: title, Href: Href(slug), Slug: slug}
}

// Href returns the docs URL path for slug.
func Href(slug Slug) string {
	return hrefPrefix + slug
}

// Index is the ordered navigation tree of the docs sidebar.
type Index struct {
	sections []Section
}

// NewIndex builds an index from sections in display order.
func NewIndex(sections ...Section) *Index {
	cp := make([]Section, len(sections))
	for i, s := range sections {
		cp[i] = Section{Title: s.Title, Items: append([]Item(nil), s.Items...)}
	}
	return &Index{sections: cp}
}

// DefaultIndex is the sidebar of the published docs.
var DefaultIndex = NewIndex(
	Section{Title: "Getting Started", Items: []Item{
		Doc("Introduction", "introduction"),
		Doc("Quick Start", "quick-start"),
		Doc("Installation", "installation"),
	}},
	Section{Title: "Customization", Items: []Item{
		Doc("Colors", "customization/colors"),
		Doc("Animations", "customization/animations"),
	}},
	Section{Title: "API Reference", Items: []Item{
		Doc("REST API", "api/rest"),
		Doc("Parameters", "api/parameters"),
	}},
	Section{Title: "Advanced", Items: []Item{
		Doc("Webhooks", "advanced/webhooks"),
	}},
)

// Sections returns a copy of the index sections.
func (x *Index) Sections() []Section {
	if x == nil {
		return nil
	}
	return NewIndex(x.sections...).sections
}

// AllSlugs returns every slug in navigation order without duplicates.
func (x *Index) AllSlugs() []Slug {
	if x == nil {
		return nil
	}
	seen := map[Slug]struct{}{}
	var out []Slug
	for _, s := range x.sections {
		for _, it := range s.Items {
			if _, dup := seen[it.Slug]; dup {
				continue
			}
			seen[it.Slug] = struct{}{}
			out = append(out, it.Slug)
		}
	}
	return out
}

// Find returns the first item for slug and the section containing it.
func (x *Index) Find(slug Slug) (Section, Item, bool) {
	if x == nil {
		return Section{}, Item{}, false
	}
	for _, s := range x.sections {
		for _, it := range s.Items {
			if it.Slug == slug {
				return s, it, true
			}
		}
	}
	return Section{}, Item{}, false
}

// Neighbors returns the items before and after slug in reading order.
func (x *Index) Neighbors(slug Slug) (prev, next *Item) {
	if x == nil {
		return nil, nil
	}
	var flat []Item
	for _, s := range x.sections {
		flat = append(flat, s.Items...)
	}
	for i, it := range flat {
		if it.Slug != slug {
			continue
		}
		if i > 0 {
			p := flat[i-1]
			prev = &p
		}
		if i+1 < len(flat) {
			n := flat[i+1]
			next = &n
		}
		return prev, next
	}
	return nil, nil
}

// SidebarItem is a view model for one sidebar link.
type SidebarItem struct {
	Title  string
	Href   string
	Active bool
}

// SidebarSection is a view model for one sidebar group.
type SidebarSection struct {
	Title  string
	Items  []SidebarItem
	Active bool
}

// Sidebar renders the index with the item for current marked active.
func (x *Index) Sidebar(current Slug) []SidebarSection {
	if x == nil {
		return nil
	}
	out := make([]SidebarSection, 0, len(x.sections))
	for _, s := range x.sections {
		sec := SidebarSection{Title: s.Title, Items: make([]SidebarItem, 0, len(s.Items))}
		for _, it := range s.Items {
			active := it.Slug == current
			sec.Active = sec.Active || active
			sec.Items = append(sec.Items, SidebarItem{Title: it.Title, Href: it.Href, Active: active})
		}
		out = append(out, sec)
	}
	return out
}
