package pgrestql

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// ProcessSQL parses a single SQL source string and lowers it into a
// Statement. It is the library's primary entry point (spec §4.1, §6).
func ProcessSQL(sql string) (*Statement, error) {
	result, err := pg_query.Parse(sql)
	if err != nil {
		return nil, wrapParseError(err)
	}

	switch len(result.Stmts) {
	case 0:
		return nil, NewUnsupportedError("expected a statement, but received none")
	case 1:
		// fall through
	default:
		return nil, NewUnsupportedError("expected a single statement, but received multiple")
	}

	raw := result.Stmts[0].Stmt
	if raw == nil {
		return nil, NewUnsupportedError("expected a statement, but received none")
	}

	switch n := raw.Node.(type) {
	case *pg_query.Node_SelectStmt:
		sel, err := lowerSelect(n.SelectStmt)
		if err != nil {
			return nil, err
		}
		return &Statement{Select: sel}, nil
	case *pg_query.Node_InsertStmt:
		return nil, NewUnimplementedError("INSERT")
	case *pg_query.Node_UpdateStmt:
		return nil, NewUnimplementedError("UPDATE")
	case *pg_query.Node_DeleteStmt:
		return nil, NewUnimplementedError("DELETE")
	case *pg_query.Node_ExplainStmt:
		return nil, NewUnimplementedError("EXPLAIN")
	default:
		return nil, NewUnsupportedError(fmt.Sprintf("%T", raw.Node))
	}
}

// wrapParseError re-wraps a pg_query_go parse failure as a ParsingError,
// preserving the source cursor position when the upstream error carries one
// (spec §4.1, §7).
func wrapParseError(err error) error {
	if perr, ok := err.(*pg_query.Error); ok {
		return NewParsingError(perr.Message, int(perr.Cursorpos))
	}
	return NewParsingError(err.Error(), 0)
}
