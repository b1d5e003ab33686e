package middleware

import (
	"net"
	"net/http"
	"os"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/gabibotos/go-handoff/log"
	"github.com/google/uuid"
	"golang.org/x/net/context"
)

type ctxKey string

// RequestIDKey holds the id LogRequests assigns to each request.
const RequestIDKey ctxKey = "requestID"

func generateRequestID() string {
	return uuid.New().String()
}

// RequestID returns the id LogRequests stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// localAddr names the inherited socket a request arrived on.
func localAddr(r *http.Request) string {
	if a, ok := r.Context().Value(http.LocalAddrContextKey).(net.Addr); ok {
		return a.String()
	}
	return "-"
}

// LogRequests logs one line per request, tagged with the serving process and
// socket so that requests handled by the old and new generation can be told
// apart during a hand-off.
func LogRequests(lg log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			start := time.Now()

			status := http.StatusOK
			rw = httpsnoop.Wrap(rw, httpsnoop.Hooks{
				WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
					return func(code int) {
						status = code
						next(code)
					}
				},
			})

			requestID := r.Header.Get("X-Request-Id")
			if requestID == "" {
				requestID = generateRequestID()
			}
			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			rw.Header().Set("X-Request-Id", requestID)

			defer func() {
				lg.Printf(
					"[%d] http request local=%s host=%s proto=%s method=%s path=%s status=%d took=%s requestID=%s",
					os.Getpid(),
					localAddr(r),
					r.RemoteAddr,
					r.Proto,
					r.Method,
					r.RequestURI,
					status,
					time.Since(start).String(),
					requestID,
				)
			}()

			next.ServeHTTP(rw, r.WithContext(ctx))
		})
	}
}
