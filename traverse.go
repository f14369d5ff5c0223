package pgrestql

import "strings"

// castAliases maps PostgreSQL's internal catalog type names to the short
// names PostgREST's cast syntax expects. Any other schema-qualified cast is
// unsupported (spec §4.3 pass 1).
var castAliases = map[string]string{
	"pg_catalog.int2":   "smallint",
	"pg_catalog.int4":   "int",
	"pg_catalog.int8":   "bigint",
	"pg_catalog.float8": "float",
}

// canonicalizeCast rewrites a dotted type name to its PostgREST form,
// reporting ok=false if the name is schema-qualified but not one of the
// known catalog aliases.
func canonicalizeCast(names []string) (string, bool) {
	joined := strings.Join(names, ".")
	if alias, found := castAliases[joined]; found {
		return alias, true
	}
	if len(names) > 1 {
		// Schema-qualified but not a recognized pg_catalog numeric alias.
		return "", false
	}
	return joined, true
}

// qualifyColumn renders a column name against a relation prefix using
// PostgREST's dotted syntax (table.column), used everywhere except ORDER BY
// columns of embedded relations (see qualifyColumnParens).
func qualifyColumn(relationPrefix, column string) string {
	if relationPrefix == "" {
		return column
	}
	return relationPrefix + "." + column
}

// qualifyColumnParens renders relation(column) — the parenthesis syntax
// PostgREST requires when sorting by an embedded/JSON-path column (spec
// §4.6).
func qualifyColumnParens(relationPrefix, column string) string {
	if relationPrefix == "" {
		return column
	}
	return relationPrefix + "(" + column + ")"
}

// splitQualifiedName splits "relation.column" into its two parts. If name
// has no dot, relation is "" and column is name unchanged. Only the first
// dot is significant — JSON-path suffixes (->/->>)  are carried inside
// column verbatim by callers that have already separated them out.
func splitQualifiedName(name string) (relationName, column string) {
	idx := strings.IndexByte(name, '.')
	if idx < 0 {
		return "", name
	}
	return name[:idx], name[idx+1:]
}

// everyTarget reports whether pred holds for every target in the list,
// recursing into embedded targets' own Targets.
func everyTarget(targets []Target, pred func(Target) bool) bool {
	for _, t := range targets {
		if !pred(t) {
			return false
		}
		if t.Embedded != nil && !everyTarget(t.Embedded.Targets, pred) {
			return false
		}
	}
	return true
}

// someTarget reports whether pred holds for at least one target in the
// list, recursing into embedded targets.
func someTarget(targets []Target, pred func(Target) bool) bool {
	for _, t := range targets {
		if pred(t) {
			return true
		}
		if t.Embedded != nil && someTarget(t.Embedded.Targets, pred) {
			return true
		}
	}
	return false
}

// flattenTargets returns every non-embedded target across the whole tree,
// depth-first, preserving source order.
func flattenTargets(targets []Target) []Target {
	var out []Target
	for _, t := range targets {
		if t.Embedded != nil {
			out = append(out, flattenTargets(t.Embedded.Targets)...)
			continue
		}
		out = append(out, t)
	}
	return out
}

// someFilter reports whether pred holds for at least one node in the
// filter tree (the filter itself, or any descendant of a LogicalFilter).
func someFilter(f Filter, pred func(Filter) bool) bool {
	if f.IsEmpty() {
		return false
	}
	if pred(f) {
		return true
	}
	if f.Logical != nil {
		for _, child := range f.Logical.Children {
			if someFilter(child, pred) {
				return true
			}
		}
	}
	return false
}

// isAggregateTarget reports whether t is an AggregateTarget — used by the
// GROUP BY validator (spec invariants 3 and 4 in §3).
func isAggregateTarget(t Target) bool {
	return t.Aggregate != nil
}

// isColumnTarget reports whether t is a plain ColumnTarget (not "*").
func isColumnTarget(t Target) bool {
	return t.Column != nil && t.Column.Column != "*"
}
