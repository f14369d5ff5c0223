package pgrestql

import pg_query "github.com/pganalyze/pg_query_go/v6"

// lowerLimit lowers limitCount/limitOffset into a *Limit, or nil when
// neither is present (spec §4.7).
func lowerLimit(limitCount, limitOffset *pg_query.Node) (*Limit, error) {
	if limitCount == nil && limitOffset == nil {
		return nil, nil
	}

	limit := &Limit{}
	if limitCount != nil {
		c, err := constIntValue(limitCount)
		if err != nil {
			return nil, err
		}
		limit.Count = &c
	}
	if limitOffset != nil {
		o, err := constIntValue(limitOffset)
		if err != nil {
			return nil, err
		}
		limit.Offset = &o
	}
	return limit, nil
}

func constIntValue(node *pg_query.Node) (int, error) {
	ac, ok := node.Node.(*pg_query.Node_AConst)
	if !ok || ac.AConst.Isnull {
		return 0, NewUnsupportedError("LIMIT/OFFSET must be an integer constant")
	}
	switch v := ac.AConst.Val.(type) {
	case *pg_query.A_Const_Ival:
		return int(v.Ival.Ival), nil
	case nil:
		// The parser's zero-value integer constant sometimes carries no Ival
		// wrapper at all; normalise it back to 0 (spec §4.7).
		return 0, nil
	default:
		return 0, NewUnsupportedError("LIMIT/OFFSET must be an integer constant")
	}
}
