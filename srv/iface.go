package srv

import (
	"net/http"
	"os"
)

// ReadyFunc is called after each listener starts serving.
type ReadyFunc func(*Listener)

// Server is the interface a listener registry implements
type Server interface {
	Start(group Group, handler http.Handler, onReady ReadyFunc) error
	Shutdown(sig os.Signal)

	Listener(name string) *Listener
	Listeners() []*Listener
	Draining() bool

	Done() <-chan struct{}
	Wait() int
	Close()
}
