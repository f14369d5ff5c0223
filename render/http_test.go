package render_test

import (
	"testing"

	"github.com/zoobzio/pgrestql/render"
	"github.com/zoobzio/pgrestql/render/format"
)

func TestHTTPInFilterQuotesCommaElements(t *testing.T) {
	sel := process(t, "select id from books where genre in ('a,b', 'c')")
	out, err := render.NewHTTPRenderer().Render(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `/books?select=id&genre=in.(%22a,b%22,c)`
	if out.HTTP.FullPath != want {
		t.Errorf("FullPath = %q, want %q", out.HTTP.FullPath, want)
	}
}

func TestHTTPParamsPreserveDuplicatesAndOrder(t *testing.T) {
	sel := process(t, "select id from books where title = 'a' and title = 'b'")
	out, err := render.NewHTTPRenderer().Render(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.HTTP.Params) != 3 {
		t.Fatalf("expected 3 params (select + 2 duplicate title filters), got %d: %+v", len(out.HTTP.Params), out.HTTP.Params)
	}
	if out.HTTP.Params[1].Key != "title" || out.HTTP.Params[1].Value != "eq.a" {
		t.Errorf("unexpected first title param: %+v", out.HTTP.Params[1])
	}
	if out.HTTP.Params[2].Key != "title" || out.HTTP.Params[2].Value != "eq.b" {
		t.Errorf("unexpected second title param: %+v", out.HTTP.Params[2])
	}
}

func TestHTTPWhitelistCharactersStayUnencoded(t *testing.T) {
	sel := process(t, "select id from books where genre in ('a', 'b')")
	out, err := render.NewHTTPRenderer().Render(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// "(", ")", "," must stay literal in the in.() value.
	want := "/books?select=id&genre=in.(a,b)"
	if out.HTTP.FullPath != want {
		t.Errorf("FullPath = %q, want %q", out.HTTP.FullPath, want)
	}
}

func TestCurlFormatterIncludesDashGOnlyWithParams(t *testing.T) {
	noParams := process(t, "select * from books")
	out, err := render.NewHTTPRenderer().Render(noParams)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := format.Curl(out.HTTP, "https://example.supabase.co/rest/v1")
	want := "curl https://example.supabase.co/rest/v1/books"
	if got != want {
		t.Errorf("Curl() = %q, want %q", got, want)
	}

	withParams := process(t, "select id from books where genre = 'x'")
	out2, err := render.NewHTTPRenderer().Render(withParams)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got2 := format.Curl(out2.HTTP, "https://example.supabase.co/rest/v1")
	if got2 != "curl -G https://example.supabase.co/rest/v1/books \\\n  -d \"select=id\" \\\n  -d \"genre=eq.x\"" {
		t.Errorf("Curl() with params = %q", got2)
	}
}

func TestRawHTTPFormatter(t *testing.T) {
	sel := process(t, "select id from books where genre = 'x'")
	out, err := render.NewHTTPRenderer().Render(sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := format.RawHTTP(out.HTTP, "example.supabase.co", "/rest/v1")
	want := "GET /rest/v1/books?select=id&genre=eq.x HTTP/1.1\nHost: example.supabase.co"
	if got != want {
		t.Errorf("RawHTTP() = %q, want %q", got, want)
	}
}
