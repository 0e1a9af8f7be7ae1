package dot

import "github.com/tordrt/relschema/internal/model"

// ConnectorFinder turns foreign key constraints into connectors.
type ConnectorFinder struct{}

// RelatedConnectors returns a connector for every constraint touching one of
// t's columns. Excluded columns contribute nothing on either end, and implied
// constraints only when includeImplied is set.
func (ConnectorFinder) RelatedConnectors(t *model.Table, includeImplied bool) []Connector {
	set := newConnectorSet()
	for _, col := range t.Columns() {
		set.addAll(columnConnectors(col, nil, false, includeImplied))
	}
	return set.sorted()
}

// RelatedConnectorsBetween returns the connectors for constraints between a
// column of a and a column of b, in either direction. includeExcluded lets
// excluded (but not all-excluded) columns contribute.
func (ConnectorFinder) RelatedConnectorsBetween(a, b *model.Table, includeExcluded, includeImplied bool) []Connector {
	set := newConnectorSet()
	for _, col := range a.Columns() {
		set.addAll(columnConnectors(col, b, includeExcluded, includeImplied))
	}
	for _, col := range b.Columns() {
		set.addAll(columnConnectors(col, a, includeExcluded, includeImplied))
	}
	return set.sorted()
}

// columnConnectors returns the connectors of start's constraints whose far
// end is in target, or anywhere when target is nil.
func columnConnectors(start *model.Column, target *model.Table, includeExcluded, includeImplied bool) []Connector {
	if hidden(start, includeExcluded) {
		return nil
	}

	var out []Connector
	for _, parent := range start.Parents() {
		if target != nil && parent.Table() != target {
			continue
		}
		if hidden(parent, includeExcluded) {
			continue
		}
		implied := start.ParentConstraint(parent).Implied
		if includeImplied || !implied {
			out = append(out, NewConnector(parent, start, implied))
		}
	}

	for _, child := range start.Children() {
		if target != nil && child.Table() != target {
			continue
		}
		if hidden(child, includeExcluded) {
			continue
		}
		implied := start.ChildConstraint(child).Implied
		if includeImplied || !implied {
			out = append(out, NewConnector(start, child, implied))
		}
	}
	return out
}

// hidden reports whether col is left out of relationship diagrams.
func hidden(col *model.Column, includeExcluded bool) bool {
	return col.AllExcluded || (!includeExcluded && col.Excluded)
}
