package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pdf-annotator/internal/domain"
)

func newShowCmd(g *globals) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <document-id>",
		Short: "Show the annotations saved for a document",
		Long: `Fetch and print the saved highlights and number markers.

Examples:
  annotator show doc-123          # Tables of highlights and markers
  annotator show doc-123 --json   # Raw payload`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := fetch(cmd, g, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(a)
			}

			if len(a.Highlights) == 0 && len(a.NumberMarkers) == 0 {
				fmt.Fprintf(out, "No annotations saved for %s.\n", args[0])
				return nil
			}
			printTables(out, a)
			fmt.Fprintf(out, "\nTotal: %d highlight(s), %d marker(s)\n", len(a.Highlights), len(a.NumberMarkers))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw JSON payload")
	return cmd
}

// fetch returns the saved payload, or an empty one when nothing was saved.
func fetch(cmd *cobra.Command, g *globals, documentID string) (*domain.Annotations, error) {
	a, err := g.backend().Fetch(cmd.Context(), documentID)
	if errors.Is(err, domain.ErrAnnotationsNotFound) {
		return domain.EmptyAnnotations(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch annotations for %s: %w", documentID, err)
	}
	return a, nil
}

func printTables(w io.Writer, a *domain.Annotations) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(a.Highlights) > 0 {
		fmt.Fprintln(tw, "ID\tCOLOR\tPAGES\tTEXT")
		for _, h := range a.Highlights {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", h.ID, h.Color, pageList(h.Areas), truncate(h.Text, 45))
		}
	}
	if len(a.NumberMarkers) > 0 {
		if len(a.Highlights) > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintln(tw, "MARKER\tPAGE\tX\tY")
		for _, m := range a.NumberMarkers {
			fmt.Fprintf(tw, "%d\t%d\t%.1f\t%.1f\n", m.Number, m.PageNumber, m.X, m.Y)
		}
	}
	_ = tw.Flush()
}

// pageList returns the distinct 1-based pages an area list touches.
func pageList(areas []domain.Area) string {
	var (
		seen  = make(map[int]bool)
		pages []string
	)
	for _, a := range areas {
		if seen[a.PageIndex] {
			continue
		}
		seen[a.PageIndex] = true
		pages = append(pages, fmt.Sprint(a.PageIndex+1))
	}
	return strings.Join(pages, ",")
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
