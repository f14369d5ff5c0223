package format

import (
	"fmt"

	"github.com/zoobzio/pgrestql/render"
)

// RawHTTP renders req as wire-format HTTP/1.1 request lines against host
// (the Host header value) and basePath (prefixed onto req.FullPath, e.g.
// "/rest/v1"), per spec §4.10/§6.
func RawHTTP(req *render.Request, host, basePath string) string {
	return fmt.Sprintf("%s %s%s HTTP/1.1\nHost: %s", req.Method, basePath, req.FullPath, host)
}
