package srv

import (
	"log"
	"net/http"
	"os"
	"time"

	lg "github.com/gabibotos/go-handoff/log"
	"github.com/gabibotos/go-handoff/srv/schema"
	"github.com/prometheus/client_golang/prometheus"
)

type (
	Option func(*options)

	options struct {
		callbacks schema.Hook
		logger    lg.Logger
		metrics   *Metrics

		hsts       *schema.HSTSConfig
		onShutdown func()
		exit       func(int)
		handlers   map[string]http.Handler
		loader     schema.SecretLoader
		signals    []os.Signal
	}
)

func newDefaultWithOptions(opts ...Option) *options {
	o := &options{
		onShutdown: func() {},
		logger:     log.New(os.Stderr, "[go-handoff]", 0),
		handlers:   make(map[string]http.Handler),
		loader:     schema.ReadDescriptor,
		signals:    DefaultDrainSignals,
	}

	for _, apply := range opts {
		apply(o)
	}

	return o
}

// LogsWith provides a logger to the registry and its listeners
func LogsWith(l lg.Logger) Option {
	return func(s *options) {
		s.logger = l
	}
}

// OnShutdown runs the provided functions once, right before exit is requested
func OnShutdown(handlers ...func()) Option {
	return func(s *options) {
		if len(handlers) == 0 {
			return
		}
		s.onShutdown = func() {
			for _, run := range handlers {
				run()
			}
		}
	}
}

// ExitsWith is called with the exit code once the registry is done. Without
// it the code is only reported through Wait.
func ExitsWith(exit func(code int)) Option {
	return func(s *options) {
		s.exit = exit
	}
}

// HandlesListenerWith serves the named listener with h instead of the handler
// passed to Start.
func HandlesListenerWith(name string, h http.Handler) Option {
	return func(s *options) {
		s.handlers[name] = h
	}
}

// LoadsSecretsWith replaces the descriptor reader used for --file secrets
func LoadsSecretsWith(loader schema.SecretLoader) Option {
	return func(s *options) {
		s.loader = loader
	}
}

// DrainsOn replaces the drain signals. With no arguments no signal is bound
// and draining only happens through Shutdown.
func DrainsOn(sigs ...os.Signal) Option {
	return func(s *options) {
		s.signals = sigs
	}
}

// WithMetrics registers listener metrics with reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *options) {
		s.metrics = NewMetrics(reg)
	}
}

func EnableHSTS(maxAge time.Duration, sendPreload bool) Option {
	if maxAge == 0 {
		maxAge = time.Hour * 24 * 126 // 126 days (minimum for inclusion in the Chrome HSTS list)
	}
	return func(s *options) {
		s.hsts = &schema.HSTSConfig{
			MaxAge:      maxAge,
			SendPreload: sendPreload,
		}
	}
}

// Hooks allows for registering one or more hooks for the server to call during its lifecycle
func Hooks(hook schema.Hook, extra ...schema.Hook) Option {
	h := &compositeHook{
		hooks: append([]schema.Hook{hook}, extra...),
	}
	return func(s *options) {
		s.callbacks = h
	}
}
