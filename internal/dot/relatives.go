package dot

import "github.com/tordrt/relschema/internal/model"

// immediateRelatives returns the tables one foreign key away from t, in
// natural order; t itself is never included. Implied constraints that would
// have contributed a relative but are not wanted are added to skipped, which
// callers share across a whole diagram.
func immediateRelatives(t *model.Table, includeExcluded, includeImplied bool, skipped model.ConstraintSet) []*model.Table {
	related := make(map[*model.Table]struct{})

	visit := func(far *model.Column, fk *model.ForeignKeyConstraint) {
		if hidden(far, includeExcluded) {
			return
		}
		if includeImplied || !fk.Implied {
			related[far.Table()] = struct{}{}
		} else {
			skipped.Add(fk)
		}
	}

	for _, col := range t.Columns() {
		if hidden(col, includeExcluded) {
			continue
		}
		for _, child := range col.Children() {
			visit(child, col.ChildConstraint(child))
		}
		for _, parent := range col.Parents() {
			visit(parent, col.ParentConstraint(parent))
		}
	}

	delete(related, t)

	tables := make([]*model.Table, 0, len(related))
	for rt := range related {
		tables = append(tables, rt)
	}
	model.SortTables(tables)
	return tables
}
