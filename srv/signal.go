package srv

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// DefaultDrainSignals start a drain when no DrainsOn option is given.
var DefaultDrainSignals = []os.Signal{syscall.SIGUSR2}

// SignalRouter delivers OS signals to a single dispatch function. Each signal
// type is registered at most once, however often Bind is called.
type SignalRouter struct {
	dispatch func(os.Signal)

	mu    sync.Mutex
	bound map[os.Signal]bool
	ch    chan os.Signal

	startOnce sync.Once
	stopOnce  sync.Once
	done      chan struct{}

	notify func(chan<- os.Signal, ...os.Signal)
	stop   func(chan<- os.Signal)
}

func NewSignalRouter(dispatch func(os.Signal)) *SignalRouter {
	return &SignalRouter{
		dispatch: dispatch,
		bound:    make(map[os.Signal]bool),
		ch:       make(chan os.Signal, 1),
		done:     make(chan struct{}),
		notify:   signal.Notify,
		stop:     signal.Stop,
	}
}

// Bind registers sigs that are not registered yet and returns how many were
// new.
func (s *SignalRouter) Bind(sigs ...os.Signal) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fresh []os.Signal
	for _, sig := range sigs {
		if s.bound[sig] {
			continue
		}
		s.bound[sig] = true
		fresh = append(fresh, sig)
	}
	if len(fresh) == 0 {
		return 0
	}

	s.startOnce.Do(func() { go s.loop() })
	s.notify(s.ch, fresh...)
	return len(fresh)
}

// Bound lists the registered signals.
func (s *SignalRouter) Bound() []os.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]os.Signal, 0, len(s.bound))
	for sig := range s.bound {
		out = append(out, sig)
	}
	return out
}

// Stop releases the OS registrations. Signals arriving afterwards get their
// default disposition.
func (s *SignalRouter) Stop() {
	s.stopOnce.Do(func() {
		s.stop(s.ch)
		close(s.done)
	})
}

func (s *SignalRouter) loop() {
	for {
		select {
		case sig := <-s.ch:
			s.dispatch(sig)
		case <-s.done:
			return
		}
	}
}
