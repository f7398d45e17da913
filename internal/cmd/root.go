// Package cmd implements the annotator command line client.
package cmd

import (
	"github.com/spf13/cobra"

	"pdf-annotator/internal/domain"
	"pdf-annotator/internal/persistence"
	"pdf-annotator/pkg/logger"
)

// globals carries the persistent flags shared by every subcommand.
type globals struct {
	cfg     domain.Config
	apiURL  string
	token   string
	verbose bool
	logger  domain.Logger
}

// NewRootCmd creates the root command for annotator.
func NewRootCmd(cfg domain.Config) *cobra.Command {
	g := &globals{cfg: cfg}

	root := &cobra.Command{
		Use:   "annotator",
		Short: "Inspect and edit document annotations",
		Long: `Work with the highlights and number markers saved for a document.

annotator provides tools to:
- Show what is saved for a document
- Export annotations as Markdown or HTML
- Replay a scripted editing session against the backend`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if g.verbose {
				level = "debug"
			}
			g.logger = logger.NewWithWriter(cmd.ErrOrStderr(), level, cfg.GetLogFormat())
		},
	}

	root.PersistentFlags().StringVar(&g.apiURL, "api-url", cfg.GetAPIBaseURL(), "Annotation backend base URL")
	root.PersistentFlags().StringVar(&g.token, "token", cfg.GetAPIToken(), "Bearer token for the backend")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Log debug output to stderr")

	root.AddCommand(newShowCmd(g))
	root.AddCommand(newExportCmd(g))
	root.AddCommand(newReplayCmd(g))

	return root
}

func (g *globals) backend() *persistence.HTTPBackend {
	b := persistence.NewHTTPBackend(g.apiURL, domain.StaticToken(g.token), nil)
	b.OnSessionExpired = func() {
		g.logger.Warn("Backend rejected the token; pass a fresh one with --token")
	}
	return b
}

func (g *globals) adapter() *persistence.Adapter {
	return persistence.NewAdapter(g.backend(), g.logger)
}
