package handlers

import (
	"html/template"

	"waveify.dev/web/internal/docs"
	"waveify.dev/web/internal/nav"
	"waveify.dev/web/internal/seo"
)

// DocsData is the view model for a documentation page.
type DocsData struct {
	Slug        docs.Slug
	Title       string
	Description string
	Content     template.HTML
	Headings    []docs.Heading
	Sidebar     []docs.SidebarSection
	Prev        *docs.Item
	Next        *docs.Item
}

// BuildDocsPage assembles the full page model for a resolved doc.
func BuildDocsPage(baseURL string, idx *docs.Index, slug docs.Slug, desc docs.Descriptor, analytics Analytics) PageData {
	path := docs.Href(slug)
	page := NewPageData(baseURL, path, desc.Title, desc.Description, analytics)
	page.Breadcrumbs = nav.DocsBreadcrumbs(idx, slug)

	crumbs := make([]seo.BreadcrumbItem, 0, len(page.Breadcrumbs))
	for _, c := range page.Breadcrumbs {
		crumbs = append(crumbs, seo.BreadcrumbItem{Name: c.Label, Item: seo.Absolute(baseURL, c.Href)})
	}
	page.SEO.OG.Type = "article"
	page.SEO.JSONLD = append(page.SEO.JSONLD,
		seo.JSON(seo.TechArticle(desc.Title, desc.Description, page.SEO.Canonical)),
		seo.JSON(seo.BreadcrumbList(crumbs)),
	)

	prev, next := idx.Neighbors(slug)
	page.Docs = &DocsData{
		Slug:        slug,
		Title:       desc.Title,
		Description: desc.Description,
		Content:     desc.Content,
		Headings:    desc.Headings,
		Sidebar:     idx.Sidebar(slug),
		Prev:        prev,
		Next:        next,
	}
	return page
}
