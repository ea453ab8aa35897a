package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"waveify.dev/web/internal/devreload"
	"waveify.dev/web/internal/docs"
)

var (
	templatesDir = "templates"
	publicDir    = "public"
	// devMode is set from WAVEIFY_WEB_DEV (preferred) or DEV (fallback)
	devMode bool

	tmplMu    sync.Mutex
	tmplCache *template.Template
	// reloader, when set in dev mode, limits reparsing to after a template edit.
	reloader *devreload.Watcher
)

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"now":     time.Now,
		"docHref": docs.Href,
		"lower":   strings.ToLower,
		// jsonld marks pre-encoded structured data as safe script content.
		"jsonld": func(s string) template.JS { return template.JS(s) },
		"fixed": func(v float64) string {
			return fmt.Sprintf("%.2f", v)
		},
	}
	// Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
	var files []string
	if err := filepath.WalkDir(templatesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", templatesDir)
	}
	return template.New("_root").Funcs(funcMap).ParseFiles(files...)
}

// templates returns the parsed set. In dev mode it reparses whenever the reloader saw
// an edit, or on every call when no reloader is running.
func templates() (*template.Template, error) {
	tmplMu.Lock()
	defer tmplMu.Unlock()
	if tmplCache == nil || (devMode && (reloader == nil || reloader.Changed())) {
		tc, err := parseTemplates()
		if err != nil {
			return nil, err
		}
		tmplCache = tc
	}
	return tmplCache, nil
}

// executeTemplate renders name into w through a buffer so a failed execution never
// leaves a partial page behind.
func executeTemplate(w io.Writer, name string, data any) error {
	t, err := templates()
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("template exec error: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// render executes the base layout with a 200 status.
func render(w http.ResponseWriter, r *http.Request, data any) {
	renderStatus(w, r, http.StatusOK, "base", data)
}

func renderStatus(w http.ResponseWriter, _ *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := executeTemplate(&buf, name, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
