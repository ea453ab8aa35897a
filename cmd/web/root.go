package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	addr      string
	templates string
	public    string
	envFile   string
}

// newRootCmd builds the command tree. Running the root without a subcommand serves.
func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "web",
		Short: "Waveify web server: docs, lazy home sections and performance telemetry",
		Long: `Serves the Waveify marketing site and documentation.

Commands:
  web serve                 Start the HTTP server (default)
  web export --out dist     Pre-render every documentation page
  web slugs                 List documentation slugs and check the navigation`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.addr, "addr", "", "HTTP listen address (default :$WAVEIFY_WEB_PORT)")
	pf.StringVar(&flags.templates, "templates", "", "templates directory")
	pf.StringVar(&flags.public, "public", "", "public assets directory")
	pf.StringVar(&flags.envFile, "env-file", ".env", "dotenv file with local overrides")

	root.AddCommand(newServeCmd(flags), newExportCmd(flags), newSlugsCmd(flags))
	return root
}
