package pgrestql

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// lowerOrderBy lowers the ORDER BY clause into the Sort list (spec §4.6).
func lowerOrderBy(sortClause []*pg_query.Node, env *relations) ([]Sort, error) {
	if len(sortClause) == 0 {
		return nil, nil
	}

	sorts := make([]Sort, 0, len(sortClause))
	for _, node := range sortClause {
		sb, ok := node.Node.(*pg_query.Node_SortBy)
		if !ok {
			return nil, NewUnsupportedError("ORDER BY item of this shape")
		}

		if _, isCast := sb.SortBy.Node.Node.(*pg_query.Node_TypeCast); isCast {
			return nil, NewUnsupportedError("casts are not supported in ORDER BY")
		}

		rel, path, ok, err := renderColumnPath(sb.SortBy.Node)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, NewUnsupportedError("ORDER BY item must be a column or JSON path")
		}

		column, err := resolveColumnReference(env, rel, path, true)
		if err != nil {
			return nil, err
		}

		direction, err := lowerSortDirection(sb.SortBy.SortbyDir)
		if err != nil {
			return nil, err
		}
		nulls, err := lowerSortNulls(sb.SortBy.SortbyNulls)
		if err != nil {
			return nil, err
		}

		sorts = append(sorts, Sort{Column: column, Direction: direction, Nulls: nulls})
	}
	return sorts, nil
}

func lowerSortDirection(dir pg_query.SortByDir) (SortDirection, error) {
	switch dir {
	case pg_query.SortByDir_SORTBY_DEFAULT:
		return "", nil
	case pg_query.SortByDir_SORTBY_ASC:
		return SortAsc, nil
	case pg_query.SortByDir_SORTBY_DESC:
		return SortDesc, nil
	default:
		return "", NewUnsupportedError("this ORDER BY direction")
	}
}

func lowerSortNulls(nulls pg_query.SortByNulls) (NullsPosition, error) {
	switch nulls {
	case pg_query.SortByNulls_SORTBY_NULLS_DEFAULT:
		return "", nil
	case pg_query.SortByNulls_SORTBY_NULLS_FIRST:
		return NullsFirst, nil
	case pg_query.SortByNulls_SORTBY_NULLS_LAST:
		return NullsLast, nil
	default:
		return "", NewUnsupportedError("this ORDER BY nulls placement")
	}
}
