package schema

import (
	"io"
	stdlog "log"
	"testing"

	"github.com/gabibotos/go-handoff/internal/fdtest"
)

var discard = stdlog.New(io.Discard, "", 0)

func inheritedFD(t *testing.T) (int, string) {
	return fdtest.Listening(t)
}

func selfSigned(t *testing.T) *SecretBundle {
	key, cert := fdtest.SelfSigned(t)
	return &SecretBundle{Key: key, Cert: cert}
}
