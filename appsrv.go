package main

import (
	"errors"
	"net/http"
	"syscall"

	"github.com/gabibotos/go-handoff/log"
	"github.com/gabibotos/go-handoff/middleware"
	"github.com/gabibotos/go-handoff/srv"
	"github.com/gorilla/mux"
	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opencensus.io/plugin/ochttp"
	"go.opencensus.io/plugin/ochttp/propagation/b3"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/trace"
	"go.opencensus.io/zpages"
)

var errDraining = errors.New("listeners are draining")

type (
	appsrv struct {
		healthcheck.Handler
		opts *options
		lg   log.Logger
		cfg  srv.Config

		registry  *srv.Registry
		app       *mux.Router
		systemApp *mux.Router
	}
)

func New(lg log.Logger, cfg srv.Config, opts ...Option) Server {
	sysApp := mux.NewRouter()
	health := healthcheck.NewHandler()

	s := appsrv{
		lg:        lg,
		cfg:       cfg,
		app:       mux.NewRouter(),
		systemApp: sysApp,
		Handler:   health,
	}
	s.opts = newDefaultWithOptions(opts...)

	sysApp.Use(middleware.NoCache)
	sysApp.PathPrefix("/debug/pprof/").Handler(middleware.Profiler())
	sysApp.HandleFunc("/healthz", health.LiveEndpoint)
	sysApp.HandleFunc("/readyz", health.ReadyEndpoint)
	sysApp.HandleFunc("/version", VersionHandler(lg, NewVersionInfo(cfg.Environment)))

	s.opts.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	sysApp.Handle("/metrics", promhttp.HandlerFor(s.opts.registry, promhttp.HandlerOpts{}))

	s.app.Use(
		middleware.ProxyHeaders,
		middleware.Recover(lg),
		middleware.LogRequests(lg),
	)

	if s.opts.metrics != nil {
		if pe, ok := s.opts.metrics.(http.Handler); ok {
			sysApp.Handle("/metrics/opencensus", pe)
		}
		err := view.Register(ochttp.ServerRequestCountView,
			ochttp.ServerRequestBytesView,
			ochttp.ServerResponseBytesView,
			ochttp.ServerLatencyView,
			ochttp.ServerRequestCountByMethod,
			ochttp.ServerResponseCountByStatusCode)
		if err != nil {
			panic(err)
		}
		view.RegisterExporter(s.opts.metrics)
	}

	if s.opts.tracer != nil {
		trace.RegisterExporter(s.opts.tracer)
		s.app.Use(
			func(next http.Handler) http.Handler {
				return &ochttp.Handler{
					Handler:          next,
					Propagation:      &b3.HTTPFormat{},
					IsPublicEndpoint: s.opts.isPublic,
				}
			},
			routeTag,
		)

		muxx := http.NewServeMux()
		zpages.Handle(muxx, "/")
		sysApp.Handle("/rpcz", muxx)
		sysApp.Handle("/tracez", muxx)
		sysApp.Handle("/public/", muxx)
	}

	return &s
}

// routeTag passes the matched route template to the opencensus handler.
func routeTag(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := mux.CurrentRoute(r)
		if route == nil {
			http.NotFound(w, r)
			return
		}
		path, err := route.GetPathTemplate()
		if err != nil {
			http.NotFound(w, r)
			return
		}
		ochttp.WithRouteTag(next, path).ServeHTTP(w, r)
	})
}

func (s *appsrv) App() *mux.Router {
	return s.app
}

func (s *appsrv) System() *mux.Router {
	return s.systemApp
}

// Init builds the registry and ties readiness to the drain state.
func (s *appsrv) Init() error {
	srvOpts := []srv.Option{
		srv.LogsWith(s.lg),
		srv.WithMetrics(s.opts.registry),
	}
	if s.opts.systemListener != "" {
		srvOpts = append(srvOpts, srv.HandlesListenerWith(s.opts.systemListener, s.systemApp))
	}
	srvOpts = append(srvOpts, s.opts.serverOpts...)

	registry, err := srv.New(s.cfg, srvOpts...)
	if err != nil {
		return err
	}
	s.registry = registry

	s.AddReadinessCheck("drain", func() error {
		if registry.Draining() {
			return errDraining
		}
		return nil
	})
	return nil
}

// Start serves the application on the listeners of group
func (s *appsrv) Start(group srv.Group) error {
	return s.registry.Start(group, s.app, func(l *srv.Listener) {
		s.lg.Printf("listener %s (%s) ready on %v", l.Name(), l.Scheme(), l.Addr())
	})
}

// Stop drains the listeners as if the drain signal had been received
func (s *appsrv) Stop() {
	s.registry.Shutdown(syscall.SIGTERM)
}

func (s *appsrv) Wait() int {
	code := s.registry.Wait()
	s.registry.Close()
	return code
}
