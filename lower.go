package pgrestql

import pg_query "github.com/pganalyze/pg_query_go/v6"

// lowerSelect lowers a single parsed SELECT statement into a Select,
// rejecting every syntactic feature outside PostgREST's subset (spec §4.2
// through §4.7).
func lowerSelect(stmt *pg_query.SelectStmt) (*Select, error) {
	if stmt.WithClause != nil {
		return nil, NewUnsupportedError("CTEs (WITH clauses)")
	}
	if len(stmt.DistinctClause) > 0 {
		return nil, NewUnsupportedError("DISTINCT")
	}
	if stmt.Op != pg_query.SetOperation_SETOP_NONE {
		return nil, NewUnsupportedError("set operations (UNION/INTERSECT/EXCEPT)")
	}
	if stmt.HavingClause != nil {
		return nil, NewUnsupportedError("HAVING")
	}

	switch len(stmt.FromClause) {
	case 0:
		return nil, NewUnsupportedError("a SELECT without a FROM clause")
	case 1:
		// fall through
	default:
		return nil, NewUnsupportedError("multiple FROM sources")
	}

	env, err := lowerFrom(stmt.FromClause[0])
	if err != nil {
		return nil, err
	}

	targets, err := lowerProjection(stmt.TargetList, env)
	if err != nil {
		return nil, err
	}

	if err := validateGroupBy(stmt.GroupClause, targets, env); err != nil {
		return nil, err
	}

	filter, err := lowerWhere(env, stmt.WhereClause)
	if err != nil {
		return nil, err
	}

	sorts, err := lowerOrderBy(stmt.SortClause, env)
	if err != nil {
		return nil, err
	}

	limit, err := lowerLimit(stmt.LimitCount, stmt.LimitOffset)
	if err != nil {
		return nil, err
	}

	return &Select{
		From:    env.primary.name,
		Targets: targets,
		Filter:  filter,
		Sorts:   sorts,
		Limit:   limit,
	}, nil
}
