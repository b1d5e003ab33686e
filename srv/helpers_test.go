package srv

import (
	"crypto/tls"
	"io"
	stdlog "log"
	"net/http"
	"testing"
	"time"

	"github.com/gabibotos/go-handoff/internal/fdtest"
	"github.com/gabibotos/go-handoff/srv/schema"
)

var discard = stdlog.New(io.Discard, "", 0)

func inheritedFD(t *testing.T) (int, string) {
	return fdtest.Listening(t)
}

func selfSigned(t *testing.T) *schema.SecretBundle {
	key, cert := fdtest.SelfSigned(t)
	return &schema.SecretBundle{Key: key, Cert: cert}
}

func text(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	})
}

// noKeepAlive is a client whose requests close their connection, so the
// server side connection count drops as soon as a response is written.
func noKeepAlive() *http.Client {
	return &http.Client{
		Timeout:   5 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
}

func waitDone(t *testing.T, r *Registry) int {
	t.Helper()
	select {
	case <-r.Done():
		return r.Wait()
	case <-time.After(5 * time.Second):
		t.Fatal("registry did not request exit")
		return -1
	}
}

func assertNotDone(t *testing.T, r *Registry) {
	t.Helper()
	select {
	case <-r.Done():
		t.Fatal("registry requested exit too early")
	default:
	}
}

func insecureTLS() *tls.Config {
	return &tls.Config{InsecureSkipVerify: true}
}
