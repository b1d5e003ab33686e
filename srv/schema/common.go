package schema

import (
	"fmt"
	"os"
)

const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// secretBufferSize is the largest key or certificate read from a descriptor.
const secretBufferSize = 2048

func prefixer(prefix, flagName string) string {
	if prefix == "" {
		return flagName
	}
	return prefix + "-" + flagName
}

func descriptorName(name string, fd int) string {
	return fmt.Sprintf("%s (inherited fd %d, pid %d)", name, fd, os.Getpid())
}
