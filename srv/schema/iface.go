package schema

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/gabibotos/go-handoff/log"
	"golang.org/x/sync/errgroup"
)

type (
	// ServerListener is one inherited socket and the way it is served.
	ServerListener interface {
		Listener() (net.Listener, error)
		Serve(ServerConfig, *errgroup.Group) (*http.Server, error)
		// Close stops accepting. It is safe to call more than once.
		Close() error
		Spec() ListenerSpec
		Scheme() string
		String() string
	}

	// Hook allows for hooking into the lifecycle of the server
	Hook interface {
		ConfigureTLS(*tls.Config)
		ConfigureListener(*http.Server, string, string)
	}
)

type ServerConfig struct {
	MaxHeaderSize  int
	Logger         log.Logger
	Handler        http.Handler
	Callbacks      Hook
	CleanupTimeout time.Duration

	// ConnState is installed on the http.Server.
	ConnState func(net.Conn, http.ConnState)
	// OnError receives the error that ended Serve, other than
	// http.ErrServerClosed. It returns nil when the error was expected.
	OnError func(error) error
	// HSTS, when set, wraps the handler of secure listeners.
	HSTS *HSTSConfig
}

type HSTSConfig struct {
	MaxAge      time.Duration
	SendPreload bool
}

// Defaults are the per-listener tunables shared by every inherited socket.
type Defaults struct {
	ListenLimit  int
	KeepAlive    time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewServerListener picks the listener variant for spec. Secure specs need
// secrets; unknown kinds are served as plain HTTP.
func NewServerListener(spec ListenerSpec, secrets *SecretBundle, d Defaults) (ServerListener, error) {
	fl := &FDFlg{
		Name:         spec.Name,
		FD:           spec.FD,
		ListenLimit:  d.ListenLimit,
		KeepAlive:    d.KeepAlive,
		ReadTimeout:  d.ReadTimeout,
		WriteTimeout: d.WriteTimeout,
		spec:         spec,
	}
	if spec.Kind != KindSecure {
		return fl, nil
	}
	return newTLSFlg(fl, secrets)
}
