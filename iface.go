package main

import (
	"github.com/gabibotos/go-handoff/srv"
	"github.com/gorilla/mux"
	"github.com/heptiolabs/healthcheck"
)

type Server interface {
	healthcheck.Handler

	// App is the router served on the application listeners
	App() *mux.Router

	// System is the router for health, version, metrics and profiling
	System() *mux.Router

	// Init builds the listener registry from the configuration
	Init() error

	// Start serves the listeners of the group
	Start(group srv.Group) error

	// Stop drains every listener
	Stop()

	// Wait blocks until the process should exit and returns the exit code
	Wait() int
}
