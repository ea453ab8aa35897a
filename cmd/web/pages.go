package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"waveify.dev/web/internal/docs"
	"waveify.dev/web/internal/handlers"
	"waveify.dev/web/internal/importer"
	"waveify.dev/web/internal/lazy"
	"waveify.dev/web/internal/observability"
	"waveify.dev/web/internal/telemetry"
)

// homeHandler renders the landing page. Sections in the first viewport are inlined;
// the rest are placeholders fetched from /fragments when they scroll into view.
func (a *app) homeHandler(w http.ResponseWriter, r *http.Request) {
	timer := telemetry.NewTimer(a.buffer, "Home")
	page := handlers.NewPageData(a.cfg.Server.BaseURL, "/", "", "Animated wave banners for landing pages, READMEs and social cards.", a.analytics)
	home := handlers.BuildHomeData(r.Context(), handlers.HomeSections, handlers.Fold, lazy.DefaultOptions(), a.loadFragment)
	page.Home = &home
	render(w, r, page)
	timer.End(r.Context())
}

func (a *app) loadFragment(ctx context.Context, name string) (handlers.Fragment, error) {
	return importer.Do(ctx, a.policy, func(ctx context.Context) (handlers.Fragment, error) {
		frag, err := handlers.LoadFragment(ctx, name)
		if errors.Is(err, handlers.ErrUnknownFragment) {
			return frag, importer.Permanent(err)
		}
		return frag, err
	})
}

// fragmentHandler renders one home section for the client-side lazy loader.
func (a *app) fragmentHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ctx := r.Context()
	slot := lazy.Load(ctx, func(ctx context.Context) (handlers.Fragment, error) {
		return a.loadFragment(ctx, name)
	})
	frag, err := slot.Await(ctx)
	switch {
	case errors.Is(err, handlers.ErrUnknownFragment):
		http.NotFound(w, r)
		return
	case err != nil:
		// Missing lazy content degrades silently; the placeholder stays in place.
		observability.FromContext(ctx).Warn("fragment load failed", zap.String("fragment", name), zap.Error(err))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	renderStatus(w, r, http.StatusOK, "fragment", frag)
}

// docsIndexHandler redirects to the first page of the navigation.
func (a *app) docsIndexHandler(w http.ResponseWriter, r *http.Request) {
	slugs := a.index.AllSlugs()
	if len(slugs) == 0 {
		a.notFoundHandler(w, r)
		return
	}
	http.Redirect(w, r, docs.Href(slugs[0]), http.StatusFound)
}

// docsHandler resolves /docs/<slug> and renders it, or the not-found page.
func (a *app) docsHandler(w http.ResponseWriter, r *http.Request) {
	slug := strings.Trim(chi.URLParam(r, "*"), "/")
	page, err := a.docsPage(r.Context(), slug)
	if err != nil {
		a.notFoundHandler(w, r)
		return
	}
	render(w, r, page)
}

func (a *app) docsPage(ctx context.Context, slug docs.Slug) (handlers.PageData, error) {
	desc, err := a.resolver.Resolve(ctx, slug)
	if err != nil {
		return handlers.PageData{}, err
	}
	return handlers.BuildDocsPage(a.cfg.Server.BaseURL, a.index, slug, desc, a.analytics), nil
}

// performanceHandler renders the metrics dashboard.
func (a *app) performanceHandler(w http.ResponseWriter, r *http.Request) {
	page := handlers.NewPageData(a.cfg.Server.BaseURL, "/performance", "Performance", "Latest web vitals and component timings.", a.analytics)
	page.SEO.Robots = "noindex"
	page.Performance = handlers.BuildPerformanceData(a.buffer.Summary(r.Context()))
	render(w, r, page)
}

func (a *app) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	page := handlers.NewPageData(a.cfg.Server.BaseURL, r.URL.Path, "Page not found", "", a.analytics)
	page.SEO.Robots = "noindex"
	renderStatus(w, r, http.StatusNotFound, "base", page)
}
