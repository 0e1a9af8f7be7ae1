package model

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/tordrt/relschema/internal/schema"
)

// Options configures how a flat schema is linked.
type Options struct {
	// ColumnExclusions matches "table.column" names of columns hidden from
	// relationship diagrams beyond the first degree.
	ColumnExclusions *regexp.Regexp
	// AllExclusions matches "table.column" names of columns hidden from
	// relationship diagrams entirely.
	AllExclusions *regexp.Regexp
	// InferImplied adds implied constraints found by name matching.
	InferImplied bool
	Logger       *slog.Logger
}

// CompileExclusion compiles a column exclusion pattern. The pattern must
// match the whole "table.column" name. An empty pattern yields nil.
func CompileExclusion(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("invalid column exclusion %q: %w", pattern, err)
	}
	return re, nil
}

// Build links s into a Database. Relations that point at unknown tables or
// columns are dropped and logged.
func Build(s *schema.Schema, opts Options) *Database {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	d := NewDatabase(s.Name)

	// Tables and columns first so relations can resolve forward references
	for _, st := range s.Tables {
		t := d.AddTable(st.Schema, st.Name)
		for _, sc := range st.Columns {
			c := t.AddColumn(sc.Name, sc.Type)
			c.Nullable = sc.Nullable
			c.Unique = sc.IsUnique
		}
		t.SetPrimaryKey(st.PrimaryKey...)
		for _, idx := range st.Indexes {
			for _, name := range idx.Columns {
				if c, ok := t.columns[name]; ok {
					c.Indexed = true
					if idx.IsUnique && len(idx.Columns) == 1 {
						c.Unique = true
					}
				}
			}
		}
	}

	for _, st := range s.Tables {
		child := d.byName[st.Name]
		for _, rel := range st.Relations {
			if err := d.link(child, rel); err != nil {
				logger.Warn("Skipping relation", "table", child.FullName(), "column", rel.SourceColumn, "error", err)
			}
		}
	}

	if opts.InferImplied {
		implied := d.inferImpliedConstraints()
		logger.Debug("Inferred implied constraints", "count", len(implied))
	}

	applyExclusions(d, opts.ColumnExclusions, opts.AllExclusions)

	return d
}

func (d *Database) link(child *Table, rel schema.Relation) error {
	childCol, ok := child.columns[rel.SourceColumn]
	if !ok {
		return fmt.Errorf("unknown column %s.%s", child.Name, rel.SourceColumn)
	}
	parent, ok := d.Table(rel.TargetTable)
	if !ok {
		return fmt.Errorf("unknown table %s", rel.TargetTable)
	}

	var parentCol *Column
	if rel.TargetColumn == "" {
		if len(parent.primaryKey) != 1 {
			return fmt.Errorf("table %s has no single-column primary key to reference", parent.Name)
		}
		parentCol = parent.primaryKey[0]
	} else {
		parentCol, ok = parent.Column(rel.TargetColumn)
		if !ok {
			return fmt.Errorf("unknown column %s.%s", parent.Name, rel.TargetColumn)
		}
	}

	d.AddConstraint(rel.Name, parentCol, childCol, rel.Implied)
	return nil
}

func applyExclusions(d *Database, columnExclusions, allExclusions *regexp.Regexp) {
	if columnExclusions == nil && allExclusions == nil {
		return
	}
	for _, t := range d.tables {
		for _, c := range t.orderedColumns {
			name := t.Name + "." + c.Name
			if allExclusions != nil && allExclusions.MatchString(name) {
				c.AllExcluded = true
			}
			if columnExclusions != nil && columnExclusions.MatchString(name) {
				c.Excluded = true
			}
		}
	}
}
