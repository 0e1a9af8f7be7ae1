package formatter

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TextFormatter writes the relationships report as compact text.
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a text report formatter.
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes one block per table.
func (f *TextFormatter) Format(results []TableResult) error {
	w := bufio.NewWriter(f.writer)

	for i, res := range results {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintf(w, "TABLE %s\n", res.Table.FullName())
		if len(res.Relatives) > 0 {
			_, _ = fmt.Fprintf(w, "  RELATED: %s\n", strings.Join(tableNames(res.Relatives), ", "))
		}
		for _, file := range res.Files {
			_, _ = fmt.Fprintf(w, "  DIAGRAM: %s\n", file)
		}
		if len(res.Hidden) > 0 {
			_, _ = fmt.Fprintf(w, "  HIDDEN IMPLIED (%d):\n", len(res.Hidden))
			for _, fk := range res.Hidden {
				_, _ = fmt.Fprintf(w, "    %s → %s\n", fk.Child, fk.Parent)
			}
		}
	}

	return w.Flush()
}
