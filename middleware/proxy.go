package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/middleware"
)

// ProxyHeaders sets RemoteAddr from X-Real-IP or X-Forwarded-For.
func ProxyHeaders(next http.Handler) http.Handler {
	return chimw.RealIP(next)
}
