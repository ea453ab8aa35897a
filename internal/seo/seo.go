package seo

import "strings"

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	SiteName    string
}

type Twitter struct {
	Card  string
	Site  string
	Image string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Twitter     Twitter
	JSONLD      []string
}

// SiteName is the brand used in titles and structured data.
const SiteName = "Waveify"

// Page builds metadata for a page at path. baseURL has no trailing slash; when empty the
// canonical URL is left relative.
func Page(baseURL, path, title, description string) Meta {
	fullTitle := SiteName
	if title != "" && title != SiteName {
		fullTitle = title + " | " + SiteName
	}
	canonical := Absolute(baseURL, path)
	return Meta{
		Title:       fullTitle,
		Description: description,
		Canonical:   canonical,
		OG: OpenGraph{
			Title:       fullTitle,
			Description: description,
			Image:       Absolute(baseURL, "/assets/img/og-default.png"),
			Type:        "website",
			URL:         canonical,
			SiteName:    SiteName,
		},
		Twitter: Twitter{Card: "summary_large_image", Site: "@waveifydev"},
	}
}

// Absolute joins baseURL and path.
func Absolute(baseURL, path string) string {
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(baseURL, "/") + path
}
