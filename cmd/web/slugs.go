package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"waveify.dev/web/internal/docs"
	"waveify.dev/web/internal/importer"
)

func newSlugsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "slugs",
		Short: "List documentation slugs and check them against the registry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			registry, err := docs.NewDefaultRegistry(importer.Policy{Retries: cfg.Importer.Retries, Delay: cfg.Importer.Delay})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, slug := range docs.DefaultIndex.AllSlugs() {
				status := "ok"
				if _, ok := registry.Lookup(slug); !ok {
					status = "missing"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", slug, docs.Href(slug), status)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return docs.Validate(registry, docs.DefaultIndex)
		},
	}
}
