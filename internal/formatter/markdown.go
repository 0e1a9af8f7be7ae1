package formatter

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/relschema/internal/model"
)

// ReportFileName is the report written next to the diagrams.
const ReportFileName = "_relationships.md"

// MarkdownFormatter writes the relationships report as markdown.
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a markdown report formatter.
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes one section per table.
func (f *MarkdownFormatter) Format(results []TableResult) error {
	w := bufio.NewWriter(f.writer)

	_, _ = fmt.Fprintln(w, "# Relationships")
	_, _ = fmt.Fprintln(w)
	if n := countHidden(results); n > 0 {
		_, _ = fmt.Fprintf(w, "%s hidden. Generate with implied relationships included to show them.\n\n", hiddenNotice(n))
	}

	for _, res := range results {
		_, _ = fmt.Fprintf(w, "## %s\n\n", res.Table.FullName())

		if len(res.Relatives) == 0 {
			_, _ = fmt.Fprintln(w, "No related tables.")
		} else {
			_, _ = fmt.Fprintf(w, "- **Related:** %s\n", strings.Join(tableNames(res.Relatives), ", "))
		}
		if len(res.Files) > 0 {
			links := make([]string, 0, len(res.Files))
			for _, file := range res.Files {
				links = append(links, fmt.Sprintf("[%s](%s)", file, file))
			}
			_, _ = fmt.Fprintf(w, "- **Diagrams:** %s\n", strings.Join(links, ", "))
		}
		_, _ = fmt.Fprintln(w)

		if len(res.Hidden) > 0 {
			_, _ = fmt.Fprintf(w, "### Hidden implied relationships (%d)\n\n", len(res.Hidden))
			for _, fk := range res.Hidden {
				_, _ = fmt.Fprintf(w, "- %s → %s\n", fk.Child, fk.Parent)
			}
			_, _ = fmt.Fprintln(w)
		}
	}

	return w.Flush()
}

func tableNames(tables []*model.Table) []string {
	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, t.FullName())
	}
	return names
}

func countHidden(results []TableResult) int {
	seen := make(model.ConstraintSet)
	for _, res := range results {
		for _, fk := range res.Hidden {
			seen.Add(fk)
		}
	}
	return len(seen)
}

// hiddenNotice phrases a count of hidden implied relationships.
func hiddenNotice(n int) string {
	if n == 1 {
		return "1 implied relationship was"
	}
	return fmt.Sprintf("%d implied relationships were", n)
}

// HiddenNotice reports how many distinct implied relationships were left out
// of the diagrams, or "" when none were.
func HiddenNotice(results []TableResult) string {
	n := countHidden(results)
	if n == 0 {
		return ""
	}
	return hiddenNotice(n) + " hidden"
}
