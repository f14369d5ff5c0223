package render_test

import (
	"strings"
	"testing"

	"github.com/zoobzio/pgrestql"
	"github.com/zoobzio/pgrestql/render"
)

func process(t *testing.T, sql string) *pgrestql.Select {
	t.Helper()
	stmt, err := pgrestql.ProcessSQL(sql)
	if err != nil {
		t.Fatalf("ProcessSQL(%q): %v", sql, err)
	}
	return stmt.Select
}

func TestClientCodeBasicChain(t *testing.T) {
	sel := process(t, "select title, description from books where genre = 'sci-fi' order by title limit 5")
	out, err := render.NewClientCodeRenderer().Render(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		".from('books')",
		".select('title,description')",
		".eq('genre', 'sci-fi')",
		".order('title')",
		".limit(5)",
	} {
		if !strings.Contains(out.Code, want) {
			t.Errorf("expected generated code to contain %q, got:\n%s", want, out.Code)
		}
	}
}

func TestClientCodeNotEqualUsesNeqCall(t *testing.T) {
	sel := process(t, "select id from books where genre <> 'x'")
	out, err := render.NewClientCodeRenderer().Render(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.Code, ".neq('genre', 'x')") {
		t.Errorf("expected a plain neq call, got:\n%s", out.Code)
	}
}

func TestClientCodeNullTestNegationUsesNotCall(t *testing.T) {
	sel := process(t, "select id from books where id is not null")
	out, err := render.NewClientCodeRenderer().Render(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.Code, ".not('id', 'is', null)") {
		t.Errorf("expected a not() call for IS NOT NULL, got:\n%s", out.Code)
	}
}

func TestClientCodeLogicalFallsBackToOr(t *testing.T) {
	sel := process(t, "select id from books where rating > 4 or title ilike '%foo%'")
	out, err := render.NewClientCodeRenderer().Render(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.Code, ".or('or(rating.gt.4,title.ilike.*foo*)')") {
		t.Errorf("expected a raw or() escape hatch, got:\n%s", out.Code)
	}
}

func TestClientCodeOffsetWithoutCountIsRenderError(t *testing.T) {
	sel := process(t, "select id from books limit 0 offset 5")
	sel.Limit.Count = nil
	_, err := render.NewClientCodeRenderer().Render(sel)
	if _, ok := err.(pgrestql.RenderError); !ok {
		t.Fatalf("expected a RenderError, got %T: %v", err, err)
	}
}

func TestClientCodeRangeFromCountAndOffset(t *testing.T) {
	sel := process(t, "select id from books limit 10 offset 20")
	out, err := render.NewClientCodeRenderer().Render(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.Code, ".range(20, 29)") {
		t.Errorf("expected .range(20, 29), got:\n%s", out.Code)
	}
}

func TestClientCodeFullTextSearch(t *testing.T) {
	sel := process(t, "select id from books where body @@ plainto_tsquery('cats')")
	out, err := render.NewClientCodeRenderer().Render(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.Code, ".textSearch('body', 'cats', { type: 'plain' })") {
		t.Errorf("expected a textSearch call, got:\n%s", out.Code)
	}
}

func TestClientCodeBareStarOmitsSelect(t *testing.T) {
	sel := process(t, "select * from books")
	out, err := render.NewClientCodeRenderer().Render(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out.Code, ".select(") {
		t.Errorf("expected no .select() call for bare *, got:\n%s", out.Code)
	}
}
