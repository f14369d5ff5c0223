package pgrestql

import (
	"fmt"
	"strconv"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// lowerProjection lowers the SQL projection list into the top-level Target
// list, in three passes (spec §4.3).
func lowerProjection(list []*pg_query.Node, env *relations) ([]Target, error) {
	var topLevel []Target

	// Pass 1 + pass 2: lower each item, then route it to the primary list
	// or into the matching embedded target's own Targets.
	for _, node := range list {
		rt, ok := node.Node.(*pg_query.Node_ResTarget)
		if !ok {
			return nil, NewUnsupportedError("projection item")
		}

		target, relationPrefix, err := lowerProjectionItem(rt.ResTarget)
		if err != nil {
			return nil, err
		}

		switch {
		case relationPrefix == "":
			topLevel = append(topLevel, target)
		case relationPrefix == env.primary.reference():
			topLevel = append(topLevel, target)
		default:
			embedded := env.resolve(relationPrefix)
			if embedded == nil {
				return nil, NewUnsupportedError(
					fmt.Sprintf("relation %q", relationPrefix),
					"Did you forget to join that relation or alias it to something else?",
				)
			}
			embedded.Targets = append(embedded.Targets, target)
		}
	}

	// Pass 3: nest embedded targets under their parent (primary or another
	// embedded target), by their canonical joinedColumns.left.relation.
	for _, embedded := range env.joined {
		if embedded.JoinedColumns.Left.Relation == env.primary.reference() {
			topLevel = append(topLevel, Target{Embedded: embedded})
			continue
		}
		parent := env.resolve(embedded.JoinedColumns.Left.Relation)
		if parent == nil {
			return nil, fmt.Errorf("internal error: embedded target %q has no parent in scope", embedded.Reference())
		}
		parent.Targets = append(parent.Targets, Target{Embedded: embedded})
	}

	return topLevel, nil
}

// lowerProjectionItem lowers a single ResTarget into a Target plus the
// relation prefix (if any) its column/aggregate was qualified with.
func lowerProjectionItem(rt *pg_query.ResTarget) (Target, string, error) {
	target, relationPrefix, err := lowerValueExpr(rt.Val)
	if err != nil {
		return Target{}, "", err
	}
	if rt.Name != "" {
		switch {
		case target.Column != nil:
			target.Column.Alias = rt.Name
		case target.Aggregate != nil:
			target.Aggregate.Alias = rt.Name
		}
	}
	return target, relationPrefix, nil
}

func lowerValueExpr(node *pg_query.Node) (Target, string, error) {
	outputCast := ""
	inner := node
	if tc, ok := inner.Node.(*pg_query.Node_TypeCast); ok {
		cast, ok2 := canonicalizeCast(typeNames(tc.TypeCast.TypeName))
		if !ok2 {
			return Target{}, "", NewUnsupportedError("schema-qualified cast")
		}
		outputCast = cast
		inner = tc.TypeCast.Arg
	}

	if fc, ok := inner.Node.(*pg_query.Node_FuncCall); ok {
		return lowerAggregateTarget(fc.FuncCall, outputCast)
	}
	return lowerColumnExpr(inner, outputCast)
}

var aggregateFuncNames = map[string]AggregateFunc{
	"avg":   AggAvg,
	"count": AggCount,
	"sum":   AggSum,
	"min":   AggMin,
	"max":   AggMax,
}

func lowerAggregateTarget(fc *pg_query.FuncCall, outputCast string) (Target, string, error) {
	name, ok := funcName(fc.Funcname)
	if !ok {
		return Target{}, "", NewUnsupportedError("expressions not supported as targets")
	}
	aggFunc, ok := aggregateFuncNames[name]
	if !ok {
		return Target{}, "", NewUnsupportedError(fmt.Sprintf("%q is not a supported aggregate function", name))
	}

	if fc.AggStar || (aggFunc == AggCount && len(fc.Args) == 0) {
		if len(fc.Args) > 0 {
			return Target{}, "", NewUnsupportedError("count() does not take an argument alongside *")
		}
		return Target{Aggregate: &AggregateTarget{FunctionName: AggCount, OutputCast: outputCast}}, "", nil
	}

	if len(fc.Args) != 1 {
		return Target{}, "", NewUnsupportedError(fmt.Sprintf("%s() must take exactly one column argument", name))
	}

	argNode := fc.Args[0]
	inputCast := ""
	if tc, ok := argNode.Node.(*pg_query.Node_TypeCast); ok {
		cast, ok2 := canonicalizeCast(typeNames(tc.TypeCast.TypeName))
		if !ok2 {
			return Target{}, "", NewUnsupportedError("schema-qualified cast")
		}
		inputCast = cast
		argNode = tc.TypeCast.Arg
	}

	rel, col, ok := columnRefParts(argNode)
	if !ok {
		return Target{}, "", NewUnsupportedError(fmt.Sprintf("%s() argument must be a column reference", name))
	}

	return Target{Aggregate: &AggregateTarget{
		FunctionName: aggFunc,
		Column:       col,
		InputCast:    inputCast,
		OutputCast:   outputCast,
	}}, rel, nil
}

func lowerColumnExpr(node *pg_query.Node, cast string) (Target, string, error) {
	rel, path, ok, err := renderColumnPath(node)
	if err != nil {
		return Target{}, "", err
	}
	if !ok {
		return Target{}, "", NewUnsupportedError("expressions not supported as targets")
	}
	return Target{Column: &ColumnTarget{Column: path, Cast: cast}}, rel, nil
}

// renderColumnPath renders a bare column reference or a ->/->> JSON-path
// chain into its verbatim textual form, returning the base relation prefix
// (if any) taken from the chain's leaf ColumnRef.
func renderColumnPath(node *pg_query.Node) (relationPrefix, path string, ok bool, err error) {
	switch n := node.Node.(type) {
	case *pg_query.Node_ColumnRef:
		rel, col, ok2 := columnRefParts(node)
		if !ok2 {
			return "", "", false, nil
		}
		return rel, col, true, nil
	case *pg_query.Node_AExpr:
		if n.AExpr.Kind != pg_query.A_Expr_Kind_AEXPR_OP {
			return "", "", false, nil
		}
		opName, ok2 := operatorName(n.AExpr.Name)
		if !ok2 || (opName != "->" && opName != "->>") {
			return "", "", false, nil
		}
		rel, leftPath, ok3, err := renderColumnPath(n.AExpr.Lexpr)
		if err != nil {
			return "", "", false, err
		}
		if !ok3 {
			return "", "", false, NewUnsupportedError("invalid JSON path expression", "Did you forget to quote a JSON path?")
		}
		leaf, ok4 := jsonPathLeaf(n.AExpr.Rexpr)
		if !ok4 {
			return "", "", false, NewUnsupportedError("invalid JSON path expression", "Did you forget to quote a JSON path?")
		}
		return rel, leftPath + opName + leaf, true, nil
	default:
		return "", "", false, nil
	}
}

func jsonPathLeaf(node *pg_query.Node) (string, bool) {
	ac, ok := node.Node.(*pg_query.Node_AConst)
	if !ok || ac.AConst.Isnull {
		return "", false
	}
	switch v := ac.AConst.Val.(type) {
	case *pg_query.A_Const_Sval:
		return "'" + v.Sval.Sval + "'", true
	case *pg_query.A_Const_Ival:
		return strconv.Itoa(int(v.Ival.Ival)), true
	default:
		return "", false
	}
}

func operatorName(name []*pg_query.Node) (string, bool) {
	if len(name) != 1 {
		return "", false
	}
	return fieldString(name[0])
}

func funcName(names []*pg_query.Node) (string, bool) {
	if len(names) == 0 {
		return "", false
	}
	return fieldString(names[len(names)-1])
}

func typeNames(tn *pg_query.TypeName) []string {
	if tn == nil {
		return nil
	}
	names := make([]string, 0, len(tn.Names))
	for _, n := range tn.Names {
		if s, ok := fieldString(n); ok {
			names = append(names, s)
		}
	}
	return names
}

// columnRefParts extracts (relation, column) from a bare or qualified
// ColumnRef, accepting A_Star as a column value ("*").
func columnRefParts(node *pg_query.Node) (relation, column string, ok bool) {
	cr, isRef := node.Node.(*pg_query.Node_ColumnRef)
	if !isRef {
		return "", "", false
	}
	fields := cr.ColumnRef.Fields
	switch len(fields) {
	case 1:
		col, ok2 := fieldStringOrStar(fields[0])
		return "", col, ok2
	case 2:
		rel, ok2 := fieldString(fields[0])
		col, ok3 := fieldStringOrStar(fields[1])
		return rel, col, ok2 && ok3
	default:
		return "", "", false
	}
}

func fieldStringOrStar(node *pg_query.Node) (string, bool) {
	if s, ok := fieldString(node); ok {
		return s, true
	}
	if _, ok := node.Node.(*pg_query.Node_AStar); ok {
		return "*", true
	}
	return "", false
}
