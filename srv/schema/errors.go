package schema

import "fmt"

// ConfigError reports a malformed argument or missing secret material.
// It is fatal at startup.
type ConfigError struct {
	Token  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Token == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s '%s'", e.Reason, e.Token)
}

// BindError reports an inherited descriptor that cannot be served on.
type BindError struct {
	Name string
	FD   int
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("listener %s: cannot use fd %d: %v", e.Name, e.FD, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// TransportError reports a runtime socket failure on a running listener.
type TransportError struct {
	Name string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("listener %s: transport failure: %v", e.Name, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
