package model

import (
	"strings"

	"github.com/go-openapi/inflect"
)

// inferImpliedConstraints adds implied constraints for columns that look like
// references to another table's single-column primary key but are not
// declared as such. A column named like the key itself, <singular>_<key>,
// <singular><key> or <table>_<key> qualifies when the types agree. Columns
// matching more than one key are left alone.
func (d *Database) inferImpliedConstraints() []*ForeignKeyConstraint {
	keys := make(map[string][]*Column)
	for _, t := range d.Tables() {
		if len(t.primaryKey) != 1 {
			continue
		}
		pk := t.primaryKey[0]
		for _, name := range referenceNames(t, pk) {
			keys[name] = append(keys[name], pk)
		}
	}

	var added []*ForeignKeyConstraint
	for _, t := range d.Tables() {
		soleKey := len(t.primaryKey) == 1
		for _, c := range t.orderedColumns {
			if (soleKey && c.PrimaryKey) || c.hasDeclaredParent() {
				continue
			}

			var match *Column
			ambiguous := false
			for _, pk := range keys[strings.ToLower(c.Name)] {
				if pk.table == t || !strings.EqualFold(pk.Type, c.Type) {
					continue
				}
				if match != nil && match != pk {
					ambiguous = true
					break
				}
				match = pk
			}
			if match == nil || ambiguous {
				continue
			}
			if _, exists := c.parents[match]; exists {
				continue
			}
			added = append(added, d.AddConstraint("", match, c, true))
		}
	}
	return added
}

// referenceNames lists the lower-cased column names that would refer to pk.
func referenceNames(t *Table, pk *Column) []string {
	table := strings.ToLower(t.Name)
	singular := strings.ToLower(inflect.Singularize(t.Name))
	key := strings.ToLower(pk.Name)

	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	if key != "id" {
		add(key)
	}
	add(singular + "_" + key)
	add(singular + key)
	add(table + "_" + key)
	return names
}
