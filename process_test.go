package pgrestql

import (
	"strings"
	"testing"
)

func TestGroupByRequiresSelectedColumn(t *testing.T) {
	_, err := ProcessSQL("select count() from books group by genre")
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	unsupported, ok := err.(UnsupportedError)
	if !ok {
		t.Fatalf("expected UnsupportedError, got %T: %v", err, err)
	}
	want := "Every group by column must also exist as a select target"
	if unsupported.Feature != want {
		t.Errorf("Feature = %q, want %q", unsupported.Feature, want)
	}
}

func TestGroupByRequiresAggregate(t *testing.T) {
	_, err := ProcessSQL("select genre from books group by genre")
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	if _, ok := err.(UnsupportedError); !ok {
		t.Fatalf("expected UnsupportedError, got %T: %v", err, err)
	}
}

func TestUnimplementedStatements(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{"insert", "insert into books (title) values ('x')"},
		{"update", "update books set title = 'x'"},
		{"delete", "delete from books"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ProcessSQL(tt.sql)
			if _, ok := err.(UnimplementedError); !ok {
				t.Fatalf("expected UnimplementedError, got %T: %v", err, err)
			}
		})
	}
}

func TestParsingErrorCarriesCursorAndHint(t *testing.T) {
	_, err := ProcessSQL("select title, from books")
	perr, ok := err.(ParsingError)
	if !ok {
		t.Fatalf("expected ParsingError, got %T: %v", err, err)
	}
	if perr.Position == 0 {
		t.Errorf("expected a non-zero cursor position")
	}
	if !strings.Contains(perr.Error(), "trailing comma") {
		t.Errorf("expected a trailing-comma hint, got %q", perr.Error())
	}
}

func TestNoStatements(t *testing.T) {
	_, err := ProcessSQL("-- just a comment")
	if _, ok := err.(UnsupportedError); !ok {
		t.Fatalf("expected UnsupportedError, got %T: %v", err, err)
	}
}

func TestMultipleStatements(t *testing.T) {
	_, err := ProcessSQL("select 1 from books; select 2 from authors")
	if err == nil {
		t.Fatal("expected an error for multiple statements")
	}
}

func TestBetweenSymmetricSwapsReversedNumericBounds(t *testing.T) {
	stmt, err := ProcessSQL("select id from books where rating between symmetric 9 and 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logical := stmt.Select.Filter.Logical
	if logical == nil {
		t.Fatalf("expected a LogicalFilter, got %+v", stmt.Select.Filter)
	}
	if logical.Operator != LogicalAnd {
		t.Errorf("expected and, got %s", logical.Operator)
	}
	gte := logical.Children[0].Column
	lte := logical.Children[1].Column
	if gte.Operator != FilterGte || gte.Value.Number != 1 {
		t.Errorf("expected gte 1, got %s %v", gte.Operator, gte.Value)
	}
	if lte.Operator != FilterLte || lte.Value.Number != 9 {
		t.Errorf("expected lte 9, got %s %v", lte.Operator, lte.Value)
	}
}

func TestNotFoldsIntoNegateNeverSurvivesAsLogicalOperator(t *testing.T) {
	stmt, err := ProcessSQL("select id from books where not (rating > 4 and genre = 'x')")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := stmt.Select.Filter
	if f.Logical == nil {
		t.Fatalf("expected a LogicalFilter, got %+v", f)
	}
	if !f.Logical.Negate {
		t.Error("expected Negate to be true")
	}
	if f.Logical.Operator != LogicalAnd {
		t.Errorf("expected and, got %s", f.Logical.Operator)
	}
	if someFilter(f, func(child Filter) bool {
		return child.Logical != nil && string(child.Logical.Operator) == "not"
	}) {
		t.Error("no LogicalFilter should ever carry operator \"not\"")
	}
}

func TestEveryPrefixedColumnRoutesIntoItsEmbeddedTarget(t *testing.T) {
	stmt, err := ProcessSQL("select a.title, b.name, b.bio from books a inner join authors b on a.author_id = b.id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	targets := stmt.Select.Targets
	if len(targets) != 2 {
		t.Fatalf("expected 2 top-level targets (title, embedded authors), got %d", len(targets))
	}
	if targets[0].Column == nil || targets[0].Column.Column != "title" {
		t.Errorf("expected bare title at top level, got %+v", targets[0])
	}
	embedded := targets[1].Embedded
	if embedded == nil || embedded.Relation != "authors" {
		t.Fatalf("expected embedded authors target, got %+v", targets[1])
	}
	if len(embedded.Targets) != 2 {
		t.Fatalf("expected 2 nested targets under authors, got %d", len(embedded.Targets))
	}
	for _, nt := range embedded.Targets {
		if nt.Column == nil || (nt.Column.Column != "name" && nt.Column.Column != "bio") {
			t.Errorf("unexpected nested target %+v", nt)
		}
	}
}

func TestAggregateOtherThanBareCountHasNonEmptyColumn(t *testing.T) {
	stmt, err := ProcessSQL("select avg(rating) from books")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	agg := stmt.Select.Targets[0].Aggregate
	if agg == nil || agg.Column == "" {
		t.Fatalf("expected avg() to carry a non-empty column, got %+v", agg)
	}
}

func TestCastCanonicalization(t *testing.T) {
	stmt, err := ProcessSQL("select id::pg_catalog.int4 from books")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	col := stmt.Select.Targets[0].Column
	if col.Cast != "int" {
		t.Errorf("expected cast to canonicalize to \"int\", got %q", col.Cast)
	}
}

func TestUnsupportedSchemaQualifiedCast(t *testing.T) {
	_, err := ProcessSQL("select id::foo.bar from books")
	if _, ok := err.(UnsupportedError); !ok {
		t.Fatalf("expected UnsupportedError, got %T: %v", err, err)
	}
}

func TestInFilter(t *testing.T) {
	stmt, err := ProcessSQL("select id from books where genre in ('sci-fi', 'fantasy')")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	col := stmt.Select.Filter.Column
	if col == nil || col.Operator != FilterIn {
		t.Fatalf("expected an IN filter, got %+v", stmt.Select.Filter)
	}
	if len(col.Value.List) != 2 {
		t.Fatalf("expected 2 values, got %d", len(col.Value.List))
	}
}

func TestFullTextSearchFilter(t *testing.T) {
	stmt, err := ProcessSQL("select id from books where to_tsvector(body) @@ websearch_to_tsquery('english', 'cats and dogs')")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	col := stmt.Select.Filter.Column
	if col == nil || col.Operator != FilterWfts {
		t.Fatalf("expected a wfts filter, got %+v", stmt.Select.Filter)
	}
	if col.Column != "body" || col.Config != "english" || col.Value.String != "cats and dogs" {
		t.Errorf("unexpected filter contents: %+v", col)
	}
}

func TestLimitZeroNormalizesToZero(t *testing.T) {
	stmt, err := ProcessSQL("select id from books limit 0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stmt.Select.Limit == nil || stmt.Select.Limit.Count == nil || *stmt.Select.Limit.Count != 0 {
		t.Fatalf("expected limit count 0, got %+v", stmt.Select.Limit)
	}
}

func TestGroupByRejectsNonAggregateTargetMissingFromList(t *testing.T) {
	_, err := ProcessSQL("select genre, title, count() from books group by genre")
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	unsupported, ok := err.(UnsupportedError)
	if !ok {
		t.Fatalf("expected UnsupportedError, got %T: %v", err, err)
	}
	want := "Every non-aggregate select target must also appear in the group by list"
	if unsupported.Feature != want {
		t.Errorf("Feature = %q, want %q", unsupported.Feature, want)
	}
}

func TestGroupByAllowsEmbeddedScopedColumn(t *testing.T) {
	stmt, err := ProcessSQL("select b.name, count() from books a inner join authors b on a.author_id = b.id group by b.name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stmt.Select.From != "books" {
		t.Errorf("unexpected From: %q", stmt.Select.From)
	}
}

func TestOrderByEmbeddedColumnUsesParenSyntax(t *testing.T) {
	stmt, err := ProcessSQL("select a.title, b.name from books a inner join authors b on a.author_id = b.id order by b.name")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sorts := stmt.Select.Sorts
	if len(sorts) != 1 || sorts[0].Column != "b(name)" {
		t.Fatalf("expected b(name) sort column, got %+v", sorts)
	}
}

func TestOrderByPrimaryRelationUsesBareColumn(t *testing.T) {
	stmt, err := ProcessSQL("select title from books order by title asc nulls last")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sorts := stmt.Select.Sorts
	if len(sorts) != 1 || sorts[0].Column != "title" {
		t.Fatalf("expected bare title sort column, got %+v", sorts)
	}
	if sorts[0].Direction != SortAsc {
		t.Errorf("expected asc, got %s", sorts[0].Direction)
	}
	if sorts[0].Nulls != NullsLast {
		t.Errorf("expected nulls last, got %s", sorts[0].Nulls)
	}
}

func TestOrderByCastRejected(t *testing.T) {
	_, err := ProcessSQL("select id from books order by id::text")
	if _, ok := err.(UnsupportedError); !ok {
		t.Fatalf("expected UnsupportedError, got %T: %v", err, err)
	}
}

func TestJoinUsingClauseUnsupported(t *testing.T) {
	_, err := ProcessSQL("select id from books join authors using (id)")
	if _, ok := err.(UnsupportedError); !ok {
		t.Fatalf("expected UnsupportedError, got %T: %v", err, err)
	}
}

func TestUnqualifiedJoinColumnsUnsupported(t *testing.T) {
	_, err := ProcessSQL("select id from books a join authors b on id = id")
	if _, ok := err.(UnsupportedError); !ok {
		t.Fatalf("expected UnsupportedError, got %T: %v", err, err)
	}
}
