package nav

import (
	"testing"

	"github.com/stretchr/testify/require"

	"waveify.dev/web/internal/docs"
)

func TestBuildMarksActive(t *testing.T) {
	t.Parallel()

	items := Build("/docs/api/rest")
	require.Len(t, items, len(Main))
	require.False(t, items[0].Active)
	require.True(t, items[1].Active)
	require.False(t, items[2].Active)

	require.True(t, Build("")[0].Active)
}

func TestBreadcrumbs(t *testing.T) {
	t.Parallel()

	require.Equal(t, []Crumb{{Href: "/", Label: "Home", Active: true}}, Breadcrumbs("/"))
	require.Equal(t, []Crumb{
		{Href: "/", Label: "Home"},
		{Href: "/docs", Label: "Docs"},
		{Href: "/docs/quick-start", Label: "Quick start", Active: true},
	}, Breadcrumbs("/docs/quick-start/"))
}

func TestDocsBreadcrumbs(t *testing.T) {
	t.Parallel()

	require.Equal(t, []Crumb{
		{Href: "/", Label: "Home"},
		{Href: "/docs", Label: "Docs"},
		{Href: "/docs/api/rest", Label: "API Reference"},
		{Href: "/docs/api/parameters", Label: "Parameters", Active: true},
	}, DocsBreadcrumbs(docs.DefaultIndex, "api/parameters"))

	first := DocsBreadcrumbs(docs.DefaultIndex, "introduction")
	require.Len(t, first, 3)
	require.Equal(t, "Introduction", first[2].Label)

	fallback := DocsBreadcrumbs(docs.DefaultIndex, "unknown")
	require.Equal(t, "Unknown", fallback[len(fallback)-1].Label)
}
