package srv

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	lg "github.com/gabibotos/go-handoff/log"
	"github.com/gabibotos/go-handoff/srv/schema"
	"golang.org/x/sync/errgroup"
)

// Listener is one named inherited socket and its drain state machine.
//
// Connection events arrive from the http.Server ConnState hook on many
// goroutines, so every field below mu is guarded by it.
type Listener struct {
	sl           schema.ServerListener
	logger       lg.Logger
	metrics      *Metrics
	drainTimeout time.Duration
	notify       func(*Listener, State)

	mu     sync.Mutex
	state  State
	active int
	server *http.Server
	err    error
}

func newListener(sl schema.ServerListener, o *options, drainTimeout time.Duration, notify func(*Listener, State)) *Listener {
	return &Listener{
		sl:           sl,
		logger:       o.logger,
		metrics:      o.metrics,
		drainTimeout: drainTimeout,
		notify:       notify,
	}
}

func (l *Listener) Name() string {
	return l.sl.Spec().Name
}

func (l *Listener) Spec() schema.ListenerSpec {
	return l.sl.Spec()
}

func (l *Listener) Scheme() string {
	return l.sl.Scheme()
}

func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Listener) ActiveConnections() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Err is the error that moved the listener to StateErrored, or the bind error
// of a failed start.
func (l *Listener) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Addr is the local address of the adopted socket, nil before start.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateCreated {
		return nil
	}
	ln, err := l.sl.Listener()
	if err != nil {
		return nil
	}
	return ln.Addr()
}

func (l *Listener) logf(format string, args ...interface{}) {
	l.logger.Printf("[%d, %s] "+format, append([]interface{}{os.Getpid(), l.Name()}, args...)...)
}

// moveLocked applies a transition if it is legal. l.mu must be held.
func (l *Listener) moveLocked(to State) bool {
	if !canTransition(l.state, to) {
		return false
	}
	l.state = to
	l.metrics.transition(l.Name(), to)
	return true
}

func (l *Listener) publish(to State) {
	if l.notify != nil {
		l.notify(l, to)
	}
}

func (l *Listener) start(sc schema.ServerConfig, eg *errgroup.Group) error {
	l.mu.Lock()
	if l.state != StateCreated {
		l.mu.Unlock()
		return nil
	}

	l.logf("Starting")
	sc.Handler = l.guard(sc.Handler)
	sc.ConnState = l.connState
	sc.OnError = l.serveError

	// Connection hooks block on mu until the state below is published.
	hs, err := l.sl.Serve(sc, eg)
	if err != nil {
		l.err = err
		l.mu.Unlock()
		return err
	}
	l.server = hs
	l.moveLocked(StateListening)
	l.mu.Unlock()

	l.publish(StateListening)
	return nil
}

// drain stops accepting and lets in-flight connections finish. Only a
// listening listener reacts; repeated calls are no-ops.
func (l *Listener) drain(sig os.Signal) {
	l.mu.Lock()
	if !l.moveLocked(StateDraining) {
		l.mu.Unlock()
		return
	}
	active := l.active
	hs := l.server
	closed := active == 0 && l.moveLocked(StateClosed)
	l.mu.Unlock()

	l.logf("Got %v, closing, current connection count %d", sig, active)
	if err := l.sl.Close(); err != nil {
		l.logf("error closing socket: %v", err)
	}
	hs.SetKeepAlivesEnabled(false)
	go l.shutdown(hs)

	l.publish(StateDraining)
	if closed {
		l.publish(StateClosed)
	}
}

func (l *Listener) shutdown(hs *http.Server) {
	ctx := context.Background()
	if l.drainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.drainTimeout)
		defer cancel()
	}
	if err := hs.Shutdown(ctx); err != nil && errors.Is(err, context.DeadlineExceeded) {
		l.onError(err)
	}
}

func (l *Listener) connState(c net.Conn, cs http.ConnState) {
	switch cs {
	case http.StateNew:
		if !l.onAccept() {
			_ = c.Close()
		}
	case http.StateHijacked, http.StateClosed:
		l.onConnectionClosed()
	}
}

// onAccept counts a new connection and reports whether it may be served.
func (l *Listener) onAccept() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active++
	l.metrics.setActive(l.Name(), l.active)
	if l.state == StateListening {
		return true
	}
	l.metrics.reject(l.Name())
	return false
}

func (l *Listener) onConnectionClosed() {
	l.mu.Lock()
	if l.active > 0 {
		l.active--
	}
	l.metrics.setActive(l.Name(), l.active)
	closed := l.active == 0 && l.state == StateDraining && l.moveLocked(StateClosed)
	l.mu.Unlock()

	if closed {
		l.publish(StateClosed)
	}
}

func (l *Listener) onError(err error) {
	l.mu.Lock()
	if !l.moveLocked(StateErrored) {
		l.mu.Unlock()
		return
	}
	l.err = &schema.TransportError{Name: l.Name(), Err: err}
	l.mu.Unlock()

	l.publish(StateErrored)
}

// serveError filters the error returned by http.Server.Serve. Once draining
// began the accept loop failing on the closed socket is expected.
func (l *Listener) serveError(err error) error {
	switch l.State() {
	case StateDraining, StateClosed:
		return nil
	}
	l.onError(err)
	return l.Err()
}

// guard keeps the application handler away from requests that arrive after
// draining began, for example on a kept-alive connection.
func (l *Listener) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.State() == StateListening {
			next.ServeHTTP(w, r)
			return
		}
		l.metrics.reject(l.Name())
		if hj, ok := w.(http.Hijacker); ok {
			if c, _, err := hj.Hijack(); err == nil {
				_ = c.Close()
				return
			}
		}
		w.Header().Set("Connection", "close")
		w.WriteHeader(http.StatusServiceUnavailable)
	})
}
