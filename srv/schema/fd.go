package schema

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"
)

// FDFlg serves plain HTTP on an inherited descriptor.
type FDFlg struct {
	Name         string
	FD           int
	ListenLimit  int
	KeepAlive    time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	spec       ListenerSpec
	listenOnce sync.Once
	listener   net.Listener
	listenErr  error
}

func (d *Defaults) RegisterFlags(fs *flag.FlagSet, prefix string) {
	fs.IntVar(&d.ListenLimit, prefixer(prefix, "listen-limit"), d.ListenLimit, "limit the number of outstanding requests per listener")
	fs.DurationVar(&d.KeepAlive, prefixer(prefix, "keep-alive"), 3*time.Minute, "sets the TCP keep-alive period on accepted connections, 0 keeps the system default. It prunes dead TCP connections ( e.g. closing laptop mid-download)")
	fs.DurationVar(&d.ReadTimeout, prefixer(prefix, "read-timeout"), 30*time.Second, "maximum duration before timing out read of the request")
	fs.DurationVar(&d.WriteTimeout, prefixer(prefix, "write-timeout"), 30*time.Second, "maximum duration before timing out write of the response")
}

// Listener adopts the inherited descriptor. The descriptor is consumed by the
// first call whether or not it succeeds; it is never bound or listened on here.
func (h *FDFlg) Listener() (net.Listener, error) {
	h.listenOnce.Do(func() {
		f := os.NewFile(uintptr(h.FD), descriptorName(h.Name, h.FD))
		if f == nil {
			h.listenErr = &BindError{Name: h.Name, FD: h.FD, Err: errors.New("invalid descriptor")}
			return
		}
		l, err := net.FileListener(f)
		_ = f.Close()
		if err != nil {
			h.listenErr = &BindError{Name: h.Name, FD: h.FD, Err: err}
			return
		}

		if h.KeepAlive > 0 {
			l = &keepAliveListener{Listener: l, period: h.KeepAlive}
		}
		if h.ListenLimit > 0 {
			l = netutil.LimitListener(l, h.ListenLimit)
		}

		h.listener = &closeOnceListener{Listener: l}
	})

	return h.listener, h.listenErr
}

func (h *FDFlg) Serve(s ServerConfig, eg *errgroup.Group) (*http.Server, error) {
	listener, err := h.Listener()
	if err != nil {
		return nil, err
	}

	httpSrv := h.newServer(s)

	if s.Callbacks != nil {
		s.Callbacks.ConfigureListener(httpSrv, h.Scheme(), listener.Addr().String())
	}

	h.serve(s, eg, httpSrv, listener, h.Scheme())
	return httpSrv, nil
}

func (h *FDFlg) newServer(s ServerConfig) *http.Server {
	httpSrv := &http.Server{
		MaxHeaderBytes: s.MaxHeaderSize,
		ReadTimeout:    h.ReadTimeout,
		WriteTimeout:   h.WriteTimeout,
		Handler:        s.Handler,
		ConnState:      s.ConnState,
	}

	if int64(s.CleanupTimeout) > 0 {
		httpSrv.IdleTimeout = s.CleanupTimeout
	}
	return httpSrv
}

func (h *FDFlg) serve(s ServerConfig, eg *errgroup.Group, httpSrv *http.Server, l net.Listener, scheme string) {
	address := l.Addr().String()
	s.Logger.Printf("[%d, %s] Serving at %s://%s", os.Getpid(), h.Name, scheme, address)
	eg.Go(func() error {
		herr := httpSrv.Serve(l)
		if herr != nil && !errors.Is(herr, http.ErrServerClosed) {
			if s.OnError != nil {
				herr = s.OnError(herr)
			}
			if herr != nil {
				s.Logger.Printf("[%d, %s] error stopping listener: %v", os.Getpid(), h.Name, herr)
				return herr
			}
		}
		s.Logger.Printf("[%d, %s] Stopped serving at %s://%s", os.Getpid(), h.Name, scheme, address)
		return nil
	})
}

func (h *FDFlg) Close() error {
	if h.listener == nil {
		return nil
	}
	return h.listener.Close()
}

func (h *FDFlg) Spec() ListenerSpec {
	return h.spec
}

func (h *FDFlg) Scheme() string {
	return SchemeHTTP
}

func (h *FDFlg) String() string {
	return fmt.Sprintf("Name: %s,FD: %d,ListenLimit: %d,KeepAlive: %s,ReadTimeout: %s,WriteTimeout: %s",
		h.Name, h.FD, h.ListenLimit, h.KeepAlive, h.ReadTimeout, h.WriteTimeout)
}

// closeOnceListener lets both the drain path and http.Server.Shutdown close
// the socket.
type closeOnceListener struct {
	net.Listener

	once sync.Once
	err  error
}

func (l *closeOnceListener) Close() error {
	l.once.Do(func() { l.err = l.Listener.Close() })
	return l.err
}

// keepAliveListener applies the configured TCP keep-alive period to every
// accepted connection.
type keepAliveListener struct {
	net.Listener
	period time.Duration
}

func (l *keepAliveListener) Accept() (net.Conn, error) {
	c, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	if tc, ok := c.(*net.TCPConn); ok {
		_ = tc.SetKeepAlive(true)
		_ = tc.SetKeepAlivePeriod(l.period)
	}
	return c, nil
}
