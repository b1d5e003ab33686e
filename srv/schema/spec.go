package schema

import (
	"strconv"
	"strings"
)

// Kind is the listener variant selected by the second field of a --fd token.
type Kind int

const (
	KindUnknown Kind = iota
	KindPlain
	KindSecure
)

// ParseKind maps a --fd type field to a Kind. "insecure" is kept as an alias of
// "plain" so that older launch scripts keep working.
func ParseKind(s string) Kind {
	switch s {
	case "plain", "insecure":
		return KindPlain
	case "secure":
		return KindSecure
	default:
		return KindUnknown
	}
}

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindSecure:
		return "secure"
	default:
		return "unknown"
	}
}

// ListenerSpec names one inherited socket. It is never mutated after parsing.
type ListenerSpec struct {
	Name string
	Kind Kind
	// Type is the kind field exactly as it was given.
	Type string
	FD   int
}

// FileSpec names one inherited descriptor holding secret material.
type FileSpec struct {
	Key string
	FD  int
}

const (
	FileKey  = "key"
	FileCert = "cert"
)

// ParseListenerSpec decodes a "name,kind,fd" token.
func ParseListenerSpec(token string) (ListenerSpec, error) {
	parts := strings.Split(token, ",")
	if len(parts) != 3 {
		return ListenerSpec{}, &ConfigError{Token: token, Reason: "malformed --fd argument passed"}
	}
	if parts[0] == "" {
		return ListenerSpec{}, &ConfigError{Token: token, Reason: "missing listener name in --fd argument"}
	}
	fd, err := parseDescriptor(parts[2])
	if err != nil {
		return ListenerSpec{}, &ConfigError{Token: token, Reason: "invalid descriptor in --fd argument"}
	}
	return ListenerSpec{
		Name: parts[0],
		Kind: ParseKind(parts[1]),
		Type: parts[1],
		FD:   fd,
	}, nil
}

// ParseFileSpec decodes a "key,fd" token where key is "key" or "cert".
func ParseFileSpec(token string) (FileSpec, error) {
	parts := strings.Split(token, ",")
	if len(parts) != 2 {
		return FileSpec{}, &ConfigError{Token: token, Reason: "malformed --file argument passed"}
	}
	if parts[0] != FileKey && parts[0] != FileCert {
		return FileSpec{}, &ConfigError{Token: token, Reason: "unknown file key in --file argument"}
	}
	fd, err := parseDescriptor(parts[1])
	if err != nil {
		return FileSpec{}, &ConfigError{Token: token, Reason: "invalid descriptor in --file argument"}
	}
	return FileSpec{Key: parts[0], FD: fd}, nil
}

func parseDescriptor(s string) (int, error) {
	fd, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return -1, err
	}
	if fd < 0 {
		return -1, strconv.ErrRange
	}
	return fd, nil
}
