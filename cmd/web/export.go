package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"waveify.dev/web/internal/docs"
	"waveify.dev/web/internal/observability"
	"waveify.dev/web/internal/telemetry"
)

func newExportCmd(flags *rootFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Pre-render every documentation page to static HTML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			// Export always fails on divergence so a broken link never ships.
			cfg.Docs.Strict = true
			templatesDir = cfg.Server.TemplatesDir
			devMode = false

			logger, err := observability.NewLogger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			a, err := newApp(cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			written, err := a.exportDocs(cmd.Context(), out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d pages to %s\n", len(written), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "dist", "output directory")
	return cmd
}

// exportDocs writes OUT/docs/<slug>/index.html for every navigation slug and returns
// the written paths. A page that fails to load aborts the export.
func (a *app) exportDocs(ctx context.Context, out string) ([]string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(out) == "" {
		return nil, fmt.Errorf("export: output directory is required")
	}
	var written []string
	for _, slug := range a.index.AllSlugs() {
		pageCtx := telemetry.WithPath(ctx, docs.Href(slug))
		page, err := a.docsPage(pageCtx, slug)
		if err != nil {
			return written, fmt.Errorf("export %s: %w", slug, err)
		}
		var buf bytes.Buffer
		if err := executeTemplate(&buf, "base", page); err != nil {
			return written, fmt.Errorf("export %s: %w", slug, err)
		}
		dir := filepath.Join(out, "docs", filepath.FromSlash(slug))
		if err := ensureDir(dir); err != nil {
			return written, err
		}
		path := filepath.Join(dir, "index.html")
		if err := atomic.WriteFile(path, &buf); err != nil {
			return written, fmt.Errorf("export %s: %w", slug, err)
		}
		a.logger.Debug("exported page", zap.String("slug", slug), zap.String("path", path))
		written = append(written, path)
	}
	return written, nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}
