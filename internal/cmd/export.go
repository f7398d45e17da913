package cmd

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"pdf-annotator/internal/domain"
)

const (
	formatMarkdown = "markdown"
	formatHTML     = "html"
)

func newExportCmd(g *globals) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export <document-id>",
		Short: "Export annotations as Markdown or HTML",
		Long: `Render the saved highlights and markers of a document as a report.

Examples:
  annotator export doc-123                     # Markdown to stdout
  annotator export doc-123 --format html > r.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := fetch(cmd, g, args[0])
			if err != nil {
				return err
			}
			md := renderMarkdown(args[0], a)

			switch strings.ToLower(format) {
			case formatMarkdown, "md":
				_, err = io.WriteString(cmd.OutOrStdout(), md)
				return err
			case formatHTML:
				return renderHTML(cmd.OutOrStdout(), md)
			default:
				return fmt.Errorf("unknown format %q (supported: markdown, html)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatMarkdown, "Output format: markdown or html")
	return cmd
}

// renderMarkdown groups highlights by the page of their first area, then
// lists markers as a table.
func renderMarkdown(documentID string, a *domain.Annotations) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Annotations for %s\n\n", documentID)
	if !a.LastModified.IsZero() {
		fmt.Fprintf(&b, "_Last modified %s_\n\n", a.LastModified.UTC().Format("2006-01-02 15:04 MST"))
	}

	b.WriteString("## Highlights\n\n")
	if len(a.Highlights) == 0 {
		b.WriteString("No highlights.\n\n")
	}
	lastPage := -1
	for _, h := range a.Highlights {
		page := 0
		if len(h.Areas) > 0 {
			page = h.Areas[0].PageIndex
		}
		if page != lastPage {
			if lastPage >= 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "### Page %d\n\n", page+1)
			lastPage = page
		}
		text := markdownEscaper.Replace(strings.Join(strings.Fields(h.Text), " "))
		if text == "" {
			text = "_(no text)_"
		}
		fmt.Fprintf(&b, "- `%s` %s\n", h.Color, text)
	}
	if lastPage >= 0 {
		b.WriteString("\n")
	}

	b.WriteString("## Markers\n\n")
	if len(a.NumberMarkers) == 0 {
		b.WriteString("No markers.\n")
		return b.String()
	}
	b.WriteString("| Marker | Page | X | Y |\n|---:|---:|---:|---:|\n")
	for _, m := range a.NumberMarkers {
		fmt.Fprintf(&b, "| %d | %d | %.1f | %.1f |\n", m.Number, m.PageNumber, m.X, m.Y)
	}
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "<", `\<`, "|", `\|`,
)

func renderHTML(w io.Writer, md string) error {
	var body bytes.Buffer
	conv := goldmark.New(goldmark.WithExtensions(extension.Table))
	if err := conv.Convert([]byte(md), &body); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>Annotations</title></head>\n<body>\n%s</body>\n</html>\n", body.String())
	return err
}
