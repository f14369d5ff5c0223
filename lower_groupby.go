package pgrestql

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// validateGroupBy resolves each GROUP BY column against the environment
// (spec §4.5, same qualification rules as projection lowering) and checks
// invariants 3 and 4 from spec §3. It reads the already-lowered projection
// tree and never modifies it.
func validateGroupBy(groupClause []*pg_query.Node, topLevel []Target, env *relations) error {
	if len(groupClause) == 0 {
		return nil
	}

	if !someTarget(topLevel, isAggregateTarget) {
		return NewUnsupportedError("GROUP BY requires at least one aggregate projection")
	}

	groupIdents := make([]groupColIdent, 0, len(groupClause))
	for _, node := range groupClause {
		rel, path, ok, err := renderColumnPath(node)
		if err != nil {
			return err
		}
		if !ok {
			return NewUnsupportedError("GROUP BY item must be a column or JSON path")
		}
		scope, err := groupByScope(env, rel)
		if err != nil {
			return err
		}
		groupIdents = append(groupIdents, groupColIdent{scope: scope, column: path})
	}

	projIdents := collectNonAggregateIdents(topLevel, "")

	for _, g := range groupIdents {
		if !containsIdent(projIdents, g) {
			return NewUnsupportedError("Every group by column must also exist as a select target")
		}
	}
	for _, p := range projIdents {
		if !containsIdent(groupIdents, p) {
			return NewUnsupportedError("Every non-aggregate select target must also appear in the group by list")
		}
	}
	return nil
}

type groupColIdent struct {
	// scope is "" for the primary relation, else the embedded target's
	// Reference() — the same scoping projection routing already applied.
	scope  string
	column string
}

func collectNonAggregateIdents(targets []Target, scope string) []groupColIdent {
	var out []groupColIdent
	for _, t := range targets {
		switch {
		case t.Column != nil && t.Column.Column != "*":
			out = append(out, groupColIdent{scope: scope, column: t.Column.Column})
		case t.Embedded != nil:
			out = append(out, collectNonAggregateIdents(t.Embedded.Targets, t.Embedded.Reference())...)
		}
	}
	return out
}

func containsIdent(list []groupColIdent, id groupColIdent) bool {
	for _, x := range list {
		if x == id {
			return true
		}
	}
	return false
}

// groupByScope mirrors projection routing's relation resolution: the
// primary relation scopes to "" (bare column, matching how routing strips
// its prefix), an embedded target scopes to its Reference().
func groupByScope(env *relations, relationPrefix string) (string, error) {
	if relationPrefix == "" || relationPrefix == env.primary.reference() {
		return "", nil
	}
	if j := env.resolve(relationPrefix); j != nil {
		return j.Reference(), nil
	}
	return "", NewUnsupportedError(
		fmt.Sprintf("relation %q", relationPrefix),
		"Did you forget to join that relation or alias it to something else?",
	)
}
