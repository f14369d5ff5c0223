package pgrestql

import (
	"fmt"
	"strconv"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// lowerWhere lowers the WHERE expression node into a Filter (spec §4.4). A
// nil node means "no WHERE clause" and lowers to the empty Filter.
func lowerWhere(env *relations, node *pg_query.Node) (Filter, error) {
	if node == nil {
		return Filter{}, nil
	}
	switch n := node.Node.(type) {
	case *pg_query.Node_AExpr:
		return lowerAExprFilter(env, n.AExpr)
	case *pg_query.Node_NullTest:
		return lowerNullTest(env, n.NullTest)
	case *pg_query.Node_BoolExpr:
		return lowerBoolExpr(env, n.BoolExpr)
	default:
		return Filter{}, NewUnsupportedError("WHERE clause of this shape")
	}
}

func lowerBoolExpr(env *relations, be *pg_query.BoolExpr) (Filter, error) {
	switch be.Boolop {
	case pg_query.BoolExprType_AND_EXPR, pg_query.BoolExprType_OR_EXPR:
		op := LogicalAnd
		if be.Boolop == pg_query.BoolExprType_OR_EXPR {
			op = LogicalOr
		}
		children := make([]Filter, 0, len(be.Args))
		for _, arg := range be.Args {
			child, err := lowerWhere(env, arg)
			if err != nil {
				return Filter{}, err
			}
			children = append(children, child)
		}
		return Filter{Logical: &LogicalFilter{Operator: op, Children: children}}, nil
	case pg_query.BoolExprType_NOT_EXPR:
		if len(be.Args) != 1 {
			return Filter{}, NewUnsupportedError("NOT with more than one operand")
		}
		child, err := lowerWhere(env, be.Args[0])
		if err != nil {
			return Filter{}, err
		}
		// Folding: no LogicalFilter ever carries a "not" operator — NOT's
		// single child is returned directly with negate set (spec §4.4, §9).
		return negateFilter(child), nil
	default:
		return Filter{}, NewUnsupportedError("boolean expression")
	}
}

func negateFilter(f Filter) Filter {
	switch {
	case f.Column != nil:
		c := *f.Column
		c.Negate = true
		return Filter{Column: &c}
	case f.Logical != nil:
		l := *f.Logical
		l.Negate = true
		return Filter{Logical: &l}
	default:
		return f
	}
}

var opSymbolOperators = map[string]FilterOperator{
	"=":  FilterEq,
	"<>": FilterNeq,
	">":  FilterGt,
	">=": FilterGte,
	"<":  FilterLt,
	"<=": FilterLte,
	"~":  FilterMatch,
	"~*": FilterIMatch,
	"@@": FilterFts,
}

var ftsFuncOperators = map[string]FilterOperator{
	"to_tsquery":           FilterFts,
	"plainto_tsquery":      FilterPlfts,
	"phraseto_tsquery":     FilterPhfts,
	"websearch_to_tsquery": FilterWfts,
}

func lowerAExprFilter(env *relations, a *pg_query.A_Expr) (Filter, error) {
	switch a.Kind {
	case pg_query.A_Expr_Kind_AEXPR_OP:
		return lowerOpFilter(env, a)
	case pg_query.A_Expr_Kind_AEXPR_LIKE:
		return lowerLikeFilter(env, a, FilterLike, "~~")
	case pg_query.A_Expr_Kind_AEXPR_ILIKE:
		return lowerLikeFilter(env, a, FilterILike, "~~*")
	case pg_query.A_Expr_Kind_AEXPR_IN:
		return lowerInFilter(env, a)
	case pg_query.A_Expr_Kind_AEXPR_BETWEEN, pg_query.A_Expr_Kind_AEXPR_NOT_BETWEEN,
		pg_query.A_Expr_Kind_AEXPR_BETWEEN_SYM, pg_query.A_Expr_Kind_AEXPR_NOT_BETWEEN_SYM:
		return lowerBetweenFilter(env, a)
	default:
		return Filter{}, NewUnsupportedError("this expression operator")
	}
}

func lowerOpFilter(env *relations, a *pg_query.A_Expr) (Filter, error) {
	sym, ok := operatorName(a.Name)
	if !ok {
		return Filter{}, NewUnsupportedError("operator expression")
	}
	op, ok := opSymbolOperators[sym]
	if !ok {
		return Filter{}, NewUnsupportedError(fmt.Sprintf("operator %q", sym))
	}

	if op == FilterFts {
		return lowerFtsFilter(env, a)
	}

	column, err := lowerFilterLeftColumn(env, a.Lexpr)
	if err != nil {
		return Filter{}, err
	}

	switch op {
	case FilterMatch, FilterIMatch:
		value, err := constStringValue(a.Rexpr)
		if err != nil {
			return Filter{}, err
		}
		return Filter{Column: &ColumnFilter{Column: column, Operator: op, Value: value}}, nil
	default:
		value, err := constScalarValue(a.Rexpr)
		if err != nil {
			return Filter{}, err
		}
		return Filter{Column: &ColumnFilter{Column: column, Operator: op, Value: value}}, nil
	}
}

func lowerLikeFilter(env *relations, a *pg_query.A_Expr, op FilterOperator, expectedSym string) (Filter, error) {
	sym, ok := operatorName(a.Name)
	if !ok || sym != expectedSym {
		return Filter{}, NewUnsupportedError(fmt.Sprintf("operator %q", sym))
	}
	column, err := lowerFilterLeftColumn(env, a.Lexpr)
	if err != nil {
		return Filter{}, err
	}
	value, err := constStringValue(a.Rexpr)
	if err != nil {
		return Filter{}, err
	}
	return Filter{Column: &ColumnFilter{Column: column, Operator: op, Value: value}}, nil
}

func lowerInFilter(env *relations, a *pg_query.A_Expr) (Filter, error) {
	sym, ok := operatorName(a.Name)
	if !ok || sym != "=" {
		return Filter{}, NewUnsupportedError("IN expression")
	}
	column, err := lowerFilterLeftColumn(env, a.Lexpr)
	if err != nil {
		return Filter{}, err
	}
	list, ok := a.Rexpr.Node.(*pg_query.Node_List)
	if !ok {
		return Filter{}, NewUnsupportedError("IN requires a list of constants")
	}
	items := make([]FilterValue, 0, len(list.List.Items))
	for _, item := range list.List.Items {
		v, err := constScalarValue(item)
		if err != nil {
			return Filter{}, err
		}
		items = append(items, v)
	}
	return Filter{Column: &ColumnFilter{
		Column:   column,
		Operator: FilterIn,
		Value:    FilterValue{Kind: ValueList, List: items},
	}}, nil
}

func lowerFtsFilter(env *relations, a *pg_query.A_Expr) (Filter, error) {
	column, err := lowerFtsLeftColumn(env, a.Lexpr)
	if err != nil {
		return Filter{}, err
	}

	fc, ok := a.Rexpr.Node.(*pg_query.Node_FuncCall)
	if !ok {
		return Filter{}, NewUnsupportedError("full-text search requires a to_tsquery-family call on the right-hand side")
	}
	name, ok := funcName(fc.FuncCall.Funcname)
	if !ok {
		return Filter{}, NewUnsupportedError("full-text search function")
	}
	op, ok := ftsFuncOperators[name]
	if !ok {
		return Filter{}, NewUnsupportedError(fmt.Sprintf("%q is not a supported full-text search function", name))
	}

	args := fc.FuncCall.Args
	var config, query string
	switch len(args) {
	case 1:
		v, err := constStringValue(args[0])
		if err != nil {
			return Filter{}, err
		}
		query = v.String
	case 2:
		cfgVal, err := constStringValue(args[0])
		if err != nil {
			return Filter{}, err
		}
		qVal, err := constStringValue(args[1])
		if err != nil {
			return Filter{}, err
		}
		config = cfgVal.String
		query = qVal.String
	default:
		return Filter{}, NewUnsupportedError(fmt.Sprintf("%s() takes 1 or 2 arguments", name))
	}

	return Filter{Column: &ColumnFilter{
		Column:   column,
		Operator: op,
		Value:    FilterValue{Kind: ValueString, String: query},
		Config:   config,
	}}, nil
}

func lowerFtsLeftColumn(env *relations, node *pg_query.Node) (string, error) {
	if fc, ok := node.Node.(*pg_query.Node_FuncCall); ok {
		name, ok2 := funcName(fc.FuncCall.Funcname)
		if !ok2 || name != "to_tsvector" {
			return "", NewUnsupportedError("full-text search left-hand side must be a column or to_tsvector(column)")
		}
		if len(fc.FuncCall.Args) != 1 {
			return "", NewUnsupportedError("to_tsvector() must take exactly one column argument")
		}
		return lowerFilterLeftColumn(env, fc.FuncCall.Args[0])
	}
	return lowerFilterLeftColumn(env, node)
}

func lowerBetweenFilter(env *relations, a *pg_query.A_Expr) (Filter, error) {
	negate := a.Kind == pg_query.A_Expr_Kind_AEXPR_NOT_BETWEEN || a.Kind == pg_query.A_Expr_Kind_AEXPR_NOT_BETWEEN_SYM
	symmetric := a.Kind == pg_query.A_Expr_Kind_AEXPR_BETWEEN_SYM || a.Kind == pg_query.A_Expr_Kind_AEXPR_NOT_BETWEEN_SYM

	column, err := lowerFilterLeftColumn(env, a.Lexpr)
	if err != nil {
		return Filter{}, err
	}

	list, ok := a.Rexpr.Node.(*pg_query.Node_List)
	if !ok || len(list.List.Items) != 2 {
		return Filter{}, NewUnsupportedError("BETWEEN requires exactly two bounds")
	}

	low, err := constScalarValue(list.List.Items[0])
	if err != nil {
		return Filter{}, err
	}
	high, err := constScalarValue(list.List.Items[1])
	if err != nil {
		return Filter{}, err
	}

	if symmetric {
		if low.Kind != ValueNumber || high.Kind != ValueNumber {
			return Filter{}, NewUnsupportedError("BETWEEN SYMMETRIC requires numeric bounds")
		}
		if low.Number > high.Number {
			low, high = high, low
		}
	}

	gte := ColumnFilter{Column: column, Operator: FilterGte, Value: low}
	lte := ColumnFilter{Column: column, Operator: FilterLte, Value: high}
	return Filter{Logical: &LogicalFilter{
		Operator: LogicalAnd,
		Negate:   negate,
		Children: []Filter{{Column: &gte}, {Column: &lte}},
	}}, nil
}

func lowerNullTest(env *relations, nt *pg_query.NullTest) (Filter, error) {
	column, err := lowerFilterLeftColumn(env, nt.Arg)
	if err != nil {
		return Filter{}, err
	}
	negate := nt.Nulltesttype == pg_query.NullTestType_IS_NOT_NULL
	return Filter{Column: &ColumnFilter{
		Column:   column,
		Operator: FilterIs,
		Negate:   negate,
		Value:    FilterValue{Kind: ValueNull},
	}}, nil
}

// lowerFilterLeftColumn resolves a filter's left-hand side to its final
// dot-qualified column text. Casts are rejected outright (spec §4.4: "Casts
// on the left are unsupported").
func lowerFilterLeftColumn(env *relations, node *pg_query.Node) (string, error) {
	if _, ok := node.Node.(*pg_query.Node_TypeCast); ok {
		return "", NewUnsupportedError("casts are not supported on the left-hand side of a filter")
	}
	rel, path, ok, err := renderColumnPath(node)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", NewUnsupportedError("WHERE left-hand side must resolve to a column")
	}
	return resolveColumnReference(env, rel, path, false)
}

func constScalarValue(node *pg_query.Node) (FilterValue, error) {
	ac, ok := node.Node.(*pg_query.Node_AConst)
	if !ok || ac.AConst.Isnull {
		return FilterValue{}, NewUnsupportedError("filter value must be a constant", "Did you forget to wrap your value in single quotes?")
	}
	switch v := ac.AConst.Val.(type) {
	case *pg_query.A_Const_Sval:
		return FilterValue{Kind: ValueString, String: v.Sval.Sval}, nil
	case *pg_query.A_Const_Ival:
		return FilterValue{Kind: ValueNumber, Number: float64(v.Ival.Ival), IsInt: true}, nil
	case *pg_query.A_Const_Fval:
		f, err := strconv.ParseFloat(v.Fval.Fval, 64)
		if err != nil {
			return FilterValue{}, NewUnsupportedError("malformed numeric constant")
		}
		return FilterValue{Kind: ValueNumber, Number: f}, nil
	default:
		return FilterValue{}, NewUnsupportedError("filter value must be a constant", "Did you forget to wrap your value in single quotes?")
	}
}

func constStringValue(node *pg_query.Node) (FilterValue, error) {
	ac, ok := node.Node.(*pg_query.Node_AConst)
	if !ok || ac.AConst.Isnull {
		return FilterValue{}, NewUnsupportedError("filter value must be a string constant")
	}
	s, ok := ac.AConst.Val.(*pg_query.A_Const_Sval)
	if !ok {
		return FilterValue{}, NewUnsupportedError("filter value must be a string constant")
	}
	return FilterValue{Kind: ValueString, String: s.Sval.Sval}, nil
}

// resolveColumnReference normalizes a (relationPrefix, column) pair picked
// up from the SQL source into the column text PostgREST expects: bare when
// unqualified or qualified by the primary relation, dot-qualified
// (relation.column) when qualified by an embedded relation, or
// parenthesis-qualified (relation(column)) when parens is requested for
// ORDER BY's embedded-sort syntax (spec §4.6).
func resolveColumnReference(env *relations, relationPrefix, column string, parens bool) (string, error) {
	if relationPrefix == "" || relationPrefix == env.primary.reference() {
		return column, nil
	}
	if j := env.resolve(relationPrefix); j != nil {
		if parens {
			return qualifyColumnParens(j.Reference(), column), nil
		}
		return qualifyColumn(j.Reference(), column), nil
	}
	return "", NewUnsupportedError(
		fmt.Sprintf("relation %q", relationPrefix),
		"Did you forget to join that relation or alias it to something else?",
	)
}
