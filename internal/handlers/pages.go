package handlers

import (
	"time"

	"waveify.dev/web/internal/nav"
	"waveify.dev/web/internal/seo"
)

// PageData is the view model for every page using the shared layout.
type PageData struct {
	Title     string
	SEO       seo.Meta
	Analytics Analytics

	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	Year        int

	// Optional per-page view model payloads
	Home        *HomeData
	Docs        *DocsData
	Performance *PerformanceData
}

// NewPageData fills the layout fields shared by every page.
func NewPageData(baseURL, path, title, description string, analytics Analytics) PageData {
	return PageData{
		Title:       title,
		SEO:         seo.Page(baseURL, path, title, description),
		Analytics:   analytics,
		Path:        path,
		Nav:         nav.Build(path),
		Breadcrumbs: nav.Breadcrumbs(path),
		Year:        time.Now().Year(),
	}
}
