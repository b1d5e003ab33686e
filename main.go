package main

import (
	"fmt"
	"net/http"
	"os"
	"syscall"

	"github.com/gabibotos/go-handoff/log"
	"github.com/gabibotos/go-handoff/srv"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	flags := srv.NewFlags()
	flags.RegisterFlags(fs)
	group := fs.String("group", "all", "the listeners to start: all, plain or secure")
	system := fs.String("system", "", "name of the listener serving /healthz, /readyz, /metrics and /debug/pprof/")
	dev := fs.Bool("dev", false, "human readable logs")
	hstsMaxAge := fs.Duration("hsts-max-age", 0, "send Strict-Transport-Security on secure listeners with this max-age; 0 disables")
	hstsPreload := fs.Bool("hsts-preload", false, "add the preload directive to Strict-Transport-Security")
	public := fs.Bool("public", false, "the application listeners are the first hop; incoming trace context is not trusted")
	opencensus := fs.Bool("opencensus", false, "log request spans and serve opencensus views on /metrics/opencensus")
	version := fs.Bool("version", false, "print the version and exit")
	_ = fs.Parse(os.Args[1:])

	cfg, err := flags.Config()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *version {
		fmt.Print(NewVersionInfo(cfg.Environment))
		return
	}
	g, err := srv.ParseGroup(*group)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	lc := zap.NewProductionConfig()
	if *dev {
		lc = zap.NewDevelopmentConfig()
	}
	zlg, err := lc.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ll := log.NewZap(zlg)

	if err := srv.ExportEnvironment(cfg.Environment); err != nil {
		ll.Printf("cannot export environment %q: %v", cfg.Environment, err)
	}

	srvOpts := []srv.Option{
		srv.DrainsOn(syscall.SIGUSR2, syscall.SIGTERM),
		srv.OnShutdown(func() {
			ll.Printf("[%d] shutting down", os.Getpid())
		}),
	}
	if *hstsMaxAge > 0 {
		srvOpts = append(srvOpts, srv.EnableHSTS(*hstsMaxAge, *hstsPreload))
	}
	appOpts := []Option{SystemListener(*system), WithServerOption(srvOpts...)}
	if *public {
		appOpts = append(appOpts, IsPublic())
	}
	if *opencensus {
		exp := newLogExporter(ll)
		appOpts = append(appOpts, WithTraceExprt(exp), WithMetricsExprt(exp))
	}

	ss := New(ll, cfg, appOpts...)
	ss.App().HandleFunc("/", helloWorld)

	if err := ss.Init(); err != nil {
		ll.Printf("[%d] %v", os.Getpid(), err)
		_ = zlg.Sync()
		os.Exit(1)
	}

	// A failed start has already decided the exit code.
	_ = ss.Start(g)

	code := ss.Wait()
	_ = zlg.Sync()
	os.Exit(code)
}

func helloWorld(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(rw, "Hello World I am %d\n", os.Getpid())
}
