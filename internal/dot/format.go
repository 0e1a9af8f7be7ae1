// Package dot builds per-table relationship diagrams in Graphviz dot syntax.
//
// For a focal table the diagram holds its direct relatives and, optionally,
// their relatives ("cousins"). Edges are anchored at columns where the node
// shows them and at the table title where it does not.
package dot

import (
	"fmt"
	"io"
	"strings"
)

// Config holds the visual settings shared by every diagram.
type Config struct {
	Font        string
	FontSize    int
	RankDir     string
	BgColor     string
	HeaderColor string
	FooterColor string
	// MaxSize limits the drawing ("width,height" in inches) when a diagram
	// is not written in full.
	MaxSize string
}

// DefaultConfig returns the standard diagram settings.
func DefaultConfig() *Config {
	return &Config{
		Font:        "Helvetica",
		FontSize:    11,
		RankDir:     "RL",
		BgColor:     "#ffffff",
		HeaderColor: "#9bab96",
		FooterColor: "#f7f7f7",
		MaxSize:     "10,10",
	}
}

// Format writes the parts of a dot file that surround nodes and edges.
type Format struct {
	cfg *Config
}

// NewFormat creates a Format. A nil config uses DefaultConfig.
func NewFormat(cfg *Config) *Format {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Format{cfg: cfg}
}

// Config returns the format's settings.
func (f *Format) Config() *Config {
	return f.cfg
}

// WriteHeader opens a digraph named name. Unless writeFull is set the drawing
// is compressed to fit the configured maximum size.
func (f *Format) WriteHeader(name string, writeFull bool, w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "// relschema: %s\n", name)
	fmt.Fprintf(&b, "digraph %s {\n", quoteID(name))
	b.WriteString("  graph [\n")
	fmt.Fprintf(&b, "    rankdir=%s\n", quoteID(f.cfg.RankDir))
	fmt.Fprintf(&b, "    bgcolor=%s\n", quoteID(f.cfg.BgColor))
	b.WriteString("    nodesep=\"0.18\"\n")
	b.WriteString("    ranksep=\"0.46\"\n")
	fmt.Fprintf(&b, "    fontname=%s\n", quoteID(f.cfg.Font))
	fmt.Fprintf(&b, "    fontsize=\"%d\"\n", f.cfg.FontSize)
	if !writeFull {
		b.WriteString("    ratio=\"compress\"\n")
		fmt.Fprintf(&b, "    size=%s\n", quoteID(f.cfg.MaxSize))
	}
	b.WriteString("  ];\n")
	b.WriteString("  node [\n")
	fmt.Fprintf(&b, "    fontname=%s\n", quoteID(f.cfg.Font))
	fmt.Fprintf(&b, "    fontsize=\"%d\"\n", f.cfg.FontSize)
	b.WriteString("    shape=\"plaintext\"\n")
	b.WriteString("  ];\n")
	b.WriteString("  edge [\n")
	b.WriteString("    arrowsize=\"0.8\"\n")
	b.WriteString("  ];\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// DiagramName names a relationship diagram after its radius and whether it
// includes implied relationships.
func DiagramName(twoDegrees, includeImplied bool) string {
	name := "oneDegreeRelationshipsDiagram"
	if twoDegrees {
		name = "twoDegreesRelationshipsDiagram"
	}
	if includeImplied {
		name += "Implied"
	}
	return name
}

// quoteID renders s as a double-quoted dot identifier.
func quoteID(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}
