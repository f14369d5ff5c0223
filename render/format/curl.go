// Package format turns a rendered HTTP request into text for a particular
// transport surface: a cURL invocation, or a raw HTTP wire request (spec §6).
package format

import (
	"fmt"
	"strings"

	"github.com/zoobzio/pgrestql/render"
)

// Curl renders req as a shell cURL invocation against base (the scheme,
// host and any base path, e.g. "https://example.supabase.co/rest/v1"). -G is included only
// when req has parameters, since it's what makes curl treat -d values as
// query-string pairs instead of a POST body.
func Curl(req *render.Request, base string) string {
	var b strings.Builder
	b.WriteString("curl ")
	if len(req.Params) > 0 {
		b.WriteString("-G ")
	}
	b.WriteString(base + req.Path)
	for _, p := range req.Params {
		fmt.Fprintf(&b, " \\\n  -d \"%s=%s\"", p.Key, p.Value)
	}
	return b.String()
}
