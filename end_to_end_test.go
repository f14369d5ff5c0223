package pgrestql_test

import (
	"testing"

	"github.com/zoobzio/pgrestql"
	"github.com/zoobzio/pgrestql/render"
)

func fullPath(t *testing.T, sql string) string {
	t.Helper()
	stmt, err := pgrestql.ProcessSQL(sql)
	if err != nil {
		t.Fatalf("ProcessSQL(%q) returned unexpected error: %v", sql, err)
	}
	out, err := render.NewHTTPRenderer().Render(stmt.Select)
	if err != nil {
		t.Fatalf("HTTP render returned unexpected error: %v", err)
	}
	return out.HTTP.FullPath
}

func TestEndToEndScenarios(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "projection, ilike, order, limit/offset",
			sql:  "select title, description from books where description ilike '%cheese%' order by title desc limit 5 offset 10",
			want: "/books?select=title,description&description=ilike.*cheese*&order=title.desc&limit=5&offset=10",
		},
		{
			name: "bare star omits select",
			sql:  "select * from books",
			want: "/books",
		},
		{
			name: "bare count",
			sql:  "select count() from books",
			want: "/books?select=count()",
		},
		{
			name: "inner join spreads with alias dropped",
			sql:  "select a.title, b.name from books a inner join authors b on a.author_id = b.id",
			want: "/books?select=title,...authors!inner(name)",
		},
		{
			name: "null test and nested or",
			sql:  "select * from books where id is not null and (rating > 4 or title ilike '%foo%')",
			want: "/books?id=not.is.null&or=(rating.gt.4,title.ilike.*foo*)",
		},
		{
			name: "group by with aggregate",
			sql:  "select genre, count() from books group by genre",
			want: "/books?select=genre,count()",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fullPath(t, tt.sql); got != tt.want {
				t.Errorf("fullPath(%q) = %q, want %q", tt.sql, got, tt.want)
			}
		})
	}
}
