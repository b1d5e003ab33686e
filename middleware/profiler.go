package middleware

import (
	"net/http"

	"github.com/e-dard/netbug"
)

// Profiler serves the runtime profiles under /debug/pprof/.
func Profiler() http.Handler {
	m := http.NewServeMux()
	netbug.RegisterHandler("/debug/pprof/", m) // trailing slash required in this call
	return m
}
