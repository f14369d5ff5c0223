// Package pgrestql lowers a single parsed PostgreSQL SELECT statement into a
// compact, renderer-agnostic PostgREST request model. The package performs
// no I/O of its own: it consumes a SQL source string (handed to the
// upstream parser) and produces a Select value, or a typed error describing
// exactly which part of PostgREST's subset the input fell outside of.
package pgrestql

import "fmt"

// Statement is the open union of translatable statement kinds. Only Select
// is populated today; the type stays open so INSERT/UPDATE/DELETE can be
// added without reshaping callers.
type Statement struct {
	Select *Select
}

// Select is the request model for a single SELECT statement.
type Select struct {
	From    string
	Targets []Target
	Filter  Filter
	Sorts   []Sort
	Limit   *Limit
}

// Target is the tagged union of projection kinds. Exactly one of Column,
// Aggregate, Embedded is non-nil.
type Target struct {
	Column    *ColumnTarget
	Aggregate *AggregateTarget
	Embedded  *EmbeddedTarget
}

// ColumnTarget is a plain (possibly JSON-path, possibly cast, possibly
// aliased) column projection. Column == "*" is valid and means "all columns".
type ColumnTarget struct {
	Column string
	Alias  string
	Cast   string
}

// AggregateFunc enumerates the aggregate functions PostgREST exposes.
type AggregateFunc string

const (
	AggAvg   AggregateFunc = "avg"
	AggCount AggregateFunc = "count"
	AggSum   AggregateFunc = "sum"
	AggMin   AggregateFunc = "min"
	AggMax   AggregateFunc = "max"
)

// AggregateTarget is an aggregate-function projection. Column is empty only
// for bare count().
type AggregateTarget struct {
	FunctionName AggregateFunc
	Column       string
	Alias        string
	InputCast    string
	OutputCast   string
}

// JoinType enumerates the join kinds PostgREST can express as an embed.
type JoinType string

const (
	JoinInner JoinType = "inner"
	JoinLeft  JoinType = "left"
)

// JoinedColumn names one side of an equi-join.
type JoinedColumn struct {
	Relation string
	Column   string
}

// JoinedColumns is the canonical equi-join pair: Left is always the parent
// side (the side that does NOT reference the newly joined relation), Right
// is always the joined relation's side. Canonicalizing at lowering time
// keeps every downstream consumer (nesting, GROUP BY routing) free of
// "which side did the user write first" branches.
type JoinedColumns struct {
	Left  JoinedColumn
	Right JoinedColumn
}

// EmbeddedTarget represents a joined relation re-expressed as a nested
// projection node.
type EmbeddedTarget struct {
	Relation      string
	Alias         string
	JoinType      JoinType
	Targets       []Target
	Flatten       bool
	JoinedColumns JoinedColumns
}

// Reference returns the name this embedded target is addressed by from
// sibling scopes: its alias if it has one, otherwise its relation name.
func (e EmbeddedTarget) Reference() string {
	if e.Alias != "" {
		return e.Alias
	}
	return e.Relation
}

// Filter is the tagged union of WHERE-clause nodes. At most one of Column,
// Logical is non-nil; a Filter with both nil (see IsEmpty) means "no WHERE
// clause".
type Filter struct {
	Column  *ColumnFilter
	Logical *LogicalFilter
}

// FilterOperator enumerates the PostgREST filter operators this core emits.
type FilterOperator string

const (
	FilterEq    FilterOperator = "eq"
	FilterNeq   FilterOperator = "neq"
	FilterGt    FilterOperator = "gt"
	FilterGte   FilterOperator = "gte"
	FilterLt    FilterOperator = "lt"
	FilterLte   FilterOperator = "lte"
	FilterLike  FilterOperator = "like"
	FilterILike FilterOperator = "ilike"
	FilterMatch FilterOperator = "match"
	FilterIMatch FilterOperator = "imatch"
	FilterIs    FilterOperator = "is"
	FilterIn    FilterOperator = "in"
	FilterFts   FilterOperator = "fts"
	FilterPlfts FilterOperator = "plfts"
	FilterPhfts FilterOperator = "phfts"
	FilterWfts  FilterOperator = "wfts"
)

// FilterValueKind tags the dynamic type carried by ColumnFilter.Value.
type FilterValueKind int

const (
	ValueString FilterValueKind = iota
	ValueNumber
	ValueNull
	ValueList
)

// FilterValue is a small sum type over the value shapes WHERE lowering can
// produce: a bare string/number, the null literal, or an ordered list of
// string|number scalars (for IN).
type FilterValue struct {
	Kind   FilterValueKind
	String string
	Number float64
	// IsInt records whether Number came from an integer literal, so renderers
	// can avoid printing "4" as "4.0".
	IsInt bool
	List  []FilterValue
}

// ColumnFilter is a single WHERE-clause leaf.
type ColumnFilter struct {
	Column   string
	Operator FilterOperator
	Negate   bool
	Value    FilterValue
	// Config is the optional full-text-search configuration name (e.g.
	// "english"), set only for fts/plfts/phfts/wfts.
	Config string
}

// LogicalOperator enumerates the two surviving boolean combinators. NOT
// never appears here: it is folded into the Negate field of its single
// child during lowering (spec invariant: no LogicalFilter ever carries a
// "not" operator).
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "and"
	LogicalOr  LogicalOperator = "or"
)

// LogicalFilter combines child filters with AND/OR.
type LogicalFilter struct {
	Operator LogicalOperator
	Negate   bool
	Children []Filter
}

// SortDirection is ASC/DESC, or absent.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// NullsPosition is FIRST/LAST, or absent.
type NullsPosition string

const (
	NullsFirst NullsPosition = "first"
	NullsLast  NullsPosition = "last"
)

// Sort is a single ORDER BY item.
type Sort struct {
	Column    string
	Direction SortDirection
	Nulls     NullsPosition
}

// Limit carries LIMIT/OFFSET. At least one of Count, Offset is set whenever
// a non-nil *Limit exists.
type Limit struct {
	Count  *int
	Offset *int
}

// IsEmpty reports whether f represents "no filter at all" (as opposed to a
// present-but-trivial filter).
func (f Filter) IsEmpty() bool {
	return f.Column == nil && f.Logical == nil
}

// relation is one entry of the relations environment: the primary table, or
// (by re-using EmbeddedTarget) a joined one.
type relation struct {
	name  string
	alias string
}

// reference returns alias if set, else name — the identifier other clauses
// use to address this relation.
func (r relation) reference() string {
	if r.alias != "" {
		return r.alias
	}
	return r.name
}

// relations is the lowering-time-only environment built while lowering FROM
// and read thereafter by every other clause lowerer. It never appears in
// the output Select.
type relations struct {
	primary relation
	joined  []*EmbeddedTarget
}

// resolve finds the joined target addressed by name (alias-or-relation).
// Valid PostgreSQL never lets a query qualify a column with a relation's
// bare name once that relation has been aliased in FROM, so an alias match
// is tried first unconditionally. Relation-name matching is then tried too,
// except when the target is aliased AND not flattened (spec §4.3 pass 2):
// that combination renders as an aliased, non-spread embed, so only its
// alias is a legal qualifier for it.
func (r *relations) resolve(name string) *EmbeddedTarget {
	for _, j := range r.joined {
		if j.Alias != "" && j.Alias == name {
			return j
		}
		if (j.Alias == "" || j.Flatten) && j.Relation == name {
			return j
		}
	}
	return nil
}

// String renders a minimal human-readable form for error messages.
func (r relation) String() string {
	if r.alias != "" {
		return fmt.Sprintf("%s (%s)", r.alias, r.name)
	}
	return r.name
}
