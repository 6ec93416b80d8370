package httpx

import (
	"net/http"
	"strings"
)

// MediaType returns the request's Content-Type stripped of any parameters.
// A request without one is treated as application/octet-stream.
func MediaType(req *http.Request) string {
	typ, _, _ := strings.Cut(req.Header.Get("Content-Type"), ";")
	if typ = strings.TrimSpace(typ); typ == "" {
		typ = "application/octet-stream"
	}
	return typ
}
