// Package log defines the logger the servers report through.
package log

type Logger interface {
	Printf(string, ...interface{})
	Fatalf(string, ...interface{})
}
