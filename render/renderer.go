// Package render turns a lowered pgrestql.Select into a concrete request
// shape: an HTTP request description, or client-code source text invoking a
// fluent PostgREST client (spec §4.8-§4.10).
package render

import "github.com/zoobzio/pgrestql"

// Renderer converts a Select into its renderer-specific Output.
// Implementations: HTTPRenderer, ClientCodeRenderer.
type Renderer interface {
	Render(sel *pgrestql.Select) (Output, error)
}

// Output carries exactly one of HTTP, Code, matching which Renderer produced it.
type Output struct {
	HTTP *Request
	Code string
}
