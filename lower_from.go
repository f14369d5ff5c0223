package pgrestql

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// lowerFrom lowers the single element of the FROM list into the relations
// environment (spec §4.2).
func lowerFrom(node *pg_query.Node) (*relations, error) {
	switch n := node.Node.(type) {
	case *pg_query.Node_RangeVar:
		return &relations{primary: relation{
			name:  n.RangeVar.Relname,
			alias: aliasName(n.RangeVar.Alias),
		}}, nil
	case *pg_query.Node_JoinExpr:
		return lowerJoin(n.JoinExpr)
	default:
		return nil, NewUnsupportedError("FROM clause of this shape")
	}
}

// lowerJoin recursively lowers the left side (building up primary +
// already-joined targets), then appends the right side, which must be a
// bare relation (spec §4.2).
func lowerJoin(j *pg_query.JoinExpr) (*relations, error) {
	env, err := lowerFrom(j.Larg)
	if err != nil {
		return nil, err
	}

	rargVar, ok := j.Rarg.Node.(*pg_query.Node_RangeVar)
	if !ok {
		return nil, NewUnsupportedError("the right-hand side of a join must be a simple relation")
	}
	newRel := relation{name: rargVar.RangeVar.Relname, alias: aliasName(rargVar.RangeVar.Alias)}

	joinType, err := lowerJoinType(j.Jointype)
	if err != nil {
		return nil, err
	}

	joined, err := lowerJoinQualifier(j.Quals, env, newRel)
	if err != nil {
		return nil, err
	}

	embedded := &EmbeddedTarget{
		Relation:      newRel.name,
		Alias:         newRel.alias,
		JoinType:      joinType,
		Flatten:       true, // spec §4.2: spread embedding is the default
		JoinedColumns: joined,
	}
	env.joined = append(env.joined, embedded)
	return env, nil
}

func lowerJoinType(jt pg_query.JoinType) (JoinType, error) {
	switch jt {
	case pg_query.JoinType_JOIN_INNER:
		return JoinInner, nil
	case pg_query.JoinType_JOIN_LEFT:
		return JoinLeft, nil
	default:
		return "", NewUnsupportedError(fmt.Sprintf("%s joins", jt))
	}
}

// lowerJoinQualifier validates and canonicalizes the join's ON clause into
// JoinedColumns, with Left always the parent side and Right always the
// newly joined relation (spec §4.2).
func lowerJoinQualifier(quals *pg_query.Node, env *relations, newRel relation) (JoinedColumns, error) {
	if quals == nil {
		return JoinedColumns{}, NewUnsupportedError("join without an ON clause")
	}

	aexpr, ok := quals.Node.(*pg_query.Node_AExpr)
	if !ok || aexpr.AExpr.Kind != pg_query.A_Expr_Kind_AEXPR_OP || !isEqOperatorName(aexpr.AExpr.Name) {
		return JoinedColumns{}, NewUnsupportedError("join qualifier must be a single equality expression")
	}

	leftRel, leftCol, leftOk := qualifiedColumnRef(aexpr.AExpr.Lexpr)
	rightRel, rightCol, rightOk := qualifiedColumnRef(aexpr.AExpr.Rexpr)
	if !leftOk || !rightOk {
		return JoinedColumns{}, NewUnsupportedError("join qualifier operands must be qualified column references")
	}

	resolve := func(relName string) (string, error) {
		switch {
		case relName == env.primary.reference():
			return env.primary.reference(), nil
		case relName == newRel.reference():
			return newRel.reference(), nil
		default:
			if j := env.resolve(relName); j != nil {
				return j.Reference(), nil
			}
			return "", NewUnsupportedError(fmt.Sprintf("join qualifier references unknown relation %q", relName))
		}
	}

	leftResolved, err := resolve(leftRel)
	if err != nil {
		return JoinedColumns{}, err
	}
	rightResolved, err := resolve(rightRel)
	if err != nil {
		return JoinedColumns{}, err
	}

	if leftResolved == rightResolved {
		// TODO: relax once recursive joins are representable in joinedColumns.
		return JoinedColumns{}, NewUnsupportedError("recursive self-joins")
	}

	leftIsNew := leftResolved == newRel.reference()
	rightIsNew := rightResolved == newRel.reference()
	if leftIsNew == rightIsNew {
		return JoinedColumns{}, NewUnsupportedError(
			"join qualifier must reference a column from the joined table",
			"Did you forget to qualify one side of the ON clause with the joined table's name or alias?",
		)
	}

	if rightIsNew {
		return JoinedColumns{
			Left:  JoinedColumn{Relation: leftResolved, Column: leftCol},
			Right: JoinedColumn{Relation: rightResolved, Column: rightCol},
		}, nil
	}
	return JoinedColumns{
		Left:  JoinedColumn{Relation: rightResolved, Column: rightCol},
		Right: JoinedColumn{Relation: leftResolved, Column: leftCol},
	}, nil
}

func aliasName(alias *pg_query.Alias) string {
	if alias == nil {
		return ""
	}
	return alias.Aliasname
}

func isEqOperatorName(name []*pg_query.Node) bool {
	if len(name) != 1 {
		return false
	}
	s, ok := fieldString(name[0])
	return ok && s == "="
}

// qualifiedColumnRef extracts (relation, column) from a two-segment
// ColumnRef, e.g. "a.id". Bare (unqualified) references and A_Star segments
// are rejected by returning ok=false.
func qualifiedColumnRef(node *pg_query.Node) (string, string, bool) {
	if node == nil {
		return "", "", false
	}
	cr, ok := node.Node.(*pg_query.Node_ColumnRef)
	if !ok {
		return "", "", false
	}
	fields := cr.ColumnRef.Fields
	if len(fields) != 2 {
		return "", "", false
	}
	rel, relOk := fieldString(fields[0])
	col, colOk := fieldString(fields[1])
	if !relOk || !colOk {
		return "", "", false
	}
	return rel, col, true
}

func fieldString(node *pg_query.Node) (string, bool) {
	if node == nil {
		return "", false
	}
	s, ok := node.Node.(*pg_query.Node_String_)
	if !ok {
		return "", false
	}
	return s.String_.Sval, true
}
