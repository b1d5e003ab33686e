package srv

import (
	"crypto/tls"
	"net/http"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gabibotos/go-handoff/srv/schema"
	"golang.org/x/sync/errgroup"
)

type (
	// Registry owns every listener of the process, in command line order.
	// Its name index is written during New only.
	Registry struct {
		opts   *options
		cfg    Config
		router *SignalRouter

		listeners []*Listener
		byName    map[string]*Listener

		serveGroup errgroup.Group
		draining   atomic.Bool
		// lifecycle orders Start against Shutdown so that no listener starts
		// after the drain signal was dispatched.
		lifecycle sync.Mutex

		exitOnce sync.Once
		exitCode int
		done     chan struct{}
	}

	compositeHook struct {
		hooks []schema.Hook
	}
)

var _ Server = (*Registry)(nil)

// New builds a listener for every spec in cfg and binds the drain signals.
// A secure spec without key and cert material fails with a *schema.ConfigError
// before anything is started.
func New(cfg Config, opts ...Option) (*Registry, error) {
	r := &Registry{
		opts:   newDefaultWithOptions(opts...),
		cfg:    cfg,
		byName: make(map[string]*Listener),
		done:   make(chan struct{}),
	}

	specs := dedupe(cfg.Listeners)

	secrets := cfg.Secrets
	if secrets == nil && hasSecure(specs) {
		var err error
		if secrets, err = schema.LoadSecrets(cfg.Files, r.opts.loader); err != nil {
			return nil, err
		}
	}

	for _, spec := range specs {
		sl, err := schema.NewServerListener(spec, secrets, cfg.Defaults)
		if err != nil {
			return nil, err
		}
		l := newListener(sl, r.opts, cfg.DrainTimeout, r.observe)
		r.listeners = append(r.listeners, l)
		r.byName[spec.Name] = l
	}

	r.router = NewSignalRouter(r.Shutdown)
	if len(r.opts.signals) > 0 {
		r.router.Bind(r.opts.signals...)
	}
	return r, nil
}

// dedupe keeps one spec per name: the last one given, at the position where
// the name first appeared.
func dedupe(specs []schema.ListenerSpec) []schema.ListenerSpec {
	pos := make(map[string]int, len(specs))
	out := make([]schema.ListenerSpec, 0, len(specs))
	for _, spec := range specs {
		if i, ok := pos[spec.Name]; ok {
			out[i] = spec
			continue
		}
		pos[spec.Name] = len(out)
		out = append(out, spec)
	}
	return out
}

func hasSecure(specs []schema.ListenerSpec) bool {
	for _, spec := range specs {
		if spec.Kind == schema.KindSecure {
			return true
		}
	}
	return false
}

// Start serves handler on every listener in group, in registry order. The
// first listener that cannot start ends the process with a nonzero code and
// its error is returned. Once a drain signal was received nothing is started.
func (r *Registry) Start(group Group, handler http.Handler, onReady ReadyFunc) error {
	for _, l := range r.listeners {
		if !group.Includes(l.Spec().Kind) {
			continue
		}

		started, err := r.startOne(l, handler)
		if err != nil {
			r.fail(l, err)
			return err
		}
		if started && onReady != nil {
			onReady(l)
		}
	}
	return nil
}

func (r *Registry) startOne(l *Listener, handler http.Handler) (bool, error) {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	if l.State() != StateCreated {
		return false, nil
	}
	if r.draining.Load() {
		l.logf("Not starting, drain already requested")
		return false, nil
	}

	h := handler
	if override, ok := r.opts.handlers[l.Name()]; ok {
		h = override
	}
	if h == nil {
		return false, &schema.ConfigError{Token: l.Name(), Reason: "no handler for listener"}
	}

	if err := l.start(r.serverConfig(h), &r.serveGroup); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Registry) serverConfig(h http.Handler) schema.ServerConfig {
	return schema.ServerConfig{
		MaxHeaderSize:  r.cfg.MaxHeaderSize,
		Logger:         r.opts.logger,
		Handler:        h,
		Callbacks:      r.opts.callbacks,
		CleanupTimeout: r.cfg.CleanupTimeout,
		HSTS:           r.opts.hsts,
	}
}

func (r *Registry) fail(l *Listener, err error) {
	l.logf("Got error, exiting: %v", err)
	r.requestExit(1)
}

// Shutdown drains every listening listener. Listeners that are already
// draining, closed or errored are left alone, so repeated signals are harmless.
func (r *Registry) Shutdown(sig os.Signal) {
	r.lifecycle.Lock()
	r.draining.Store(true)
	for _, l := range r.listeners {
		l.drain(sig)
	}
	r.lifecycle.Unlock()

	if r.settled() {
		r.requestExit(0)
	}
}

func (r *Registry) observe(l *Listener, st State) {
	switch st {
	case StateErrored:
		l.logf("Got error, exiting: %v", l.Err())
		r.requestExit(1)
	case StateClosed:
		l.logf("Closed all connections, exiting")
		if r.cfg.ExitPolicy == ExitOnFirstClosed || r.settled() {
			r.requestExit(0)
		}
	}
}

// settled reports whether no started listener is still serving or draining.
func (r *Registry) settled() bool {
	for _, l := range r.listeners {
		switch l.State() {
		case StateListening, StateDraining:
			return false
		}
	}
	return true
}

func (r *Registry) requestExit(code int) {
	r.exitOnce.Do(func() {
		r.exitCode = code
		r.opts.onShutdown()
		close(r.done)
		if r.opts.exit != nil {
			r.opts.exit(code)
		}
	})
}

// Done is closed once the registry has decided the process should exit.
func (r *Registry) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until Done and returns the exit code: 0 after a clean drain,
// nonzero after a start or transport failure.
func (r *Registry) Wait() int {
	<-r.done
	return r.exitCode
}

// WaitServing blocks until every started serve loop has returned and reports
// the first transport error among them.
func (r *Registry) WaitServing() error {
	return r.serveGroup.Wait()
}

// Close releases the signal bindings.
func (r *Registry) Close() {
	r.router.Stop()
}

func (r *Registry) Listener(name string) *Listener {
	return r.byName[name]
}

func (r *Registry) Listeners() []*Listener {
	out := make([]*Listener, len(r.listeners))
	copy(out, r.listeners)
	return out
}

// Draining reports whether a drain signal has been received.
func (r *Registry) Draining() bool {
	return r.draining.Load()
}

func (r *Registry) Environment() string {
	return r.cfg.Environment
}

// Signals lists the bound drain signals.
func (r *Registry) Signals() []os.Signal {
	return r.router.Bound()
}

func (c *compositeHook) ConfigureTLS(cfg *tls.Config) {
	for _, h := range c.hooks {
		h.ConfigureTLS(cfg)
	}
}

func (c *compositeHook) ConfigureListener(s *http.Server, scheme, addr string) {
	for _, h := range c.hooks {
		h.ConfigureListener(s, scheme, addr)
	}
}
