package srv

import (
	"fmt"

	"github.com/gabibotos/go-handoff/srv/schema"
)

// State is the lifecycle position of a Listener. It only moves forward.
type State int32

const (
	StateCreated State = iota
	StateListening
	StateDraining
	StateClosed
	StateErrored
)

var stateNames = map[State]string{
	StateCreated:   "created",
	StateListening: "listening",
	StateDraining:  "draining",
	StateClosed:    "closed",
	StateErrored:   "errored",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

func canTransition(from, to State) bool {
	switch to {
	case StateListening:
		return from == StateCreated
	case StateDraining:
		return from == StateListening
	case StateClosed:
		return from == StateDraining
	case StateErrored:
		return from == StateListening || from == StateDraining
	}
	return false
}

// Group selects which listeners a Start call touches.
type Group int

const (
	GroupAll Group = iota
	GroupPlain
	GroupSecure
)

func ParseGroup(s string) (Group, error) {
	switch s {
	case "", "all":
		return GroupAll, nil
	case "plain", "insecure":
		return GroupPlain, nil
	case "secure":
		return GroupSecure, nil
	}
	return GroupAll, &schema.ConfigError{Token: s, Reason: "unknown listener group"}
}

// Includes reports whether listeners of kind k belong to g. Unknown kinds only
// belong to GroupAll.
func (g Group) Includes(k schema.Kind) bool {
	switch g {
	case GroupAll:
		return true
	case GroupPlain:
		return k == schema.KindPlain
	case GroupSecure:
		return k == schema.KindSecure
	}
	return false
}

func (g Group) String() string {
	switch g {
	case GroupPlain:
		return "plain"
	case GroupSecure:
		return "secure"
	default:
		return "all"
	}
}

// ExitPolicy decides when a drained registry asks the process to exit.
type ExitPolicy int

const (
	// ExitWhenAllClosed waits until every started listener is closed or errored.
	ExitWhenAllClosed ExitPolicy = iota
	// ExitOnFirstClosed exits as soon as any listener finishes draining.
	ExitOnFirstClosed
)

func ParseExitPolicy(s string) (ExitPolicy, error) {
	switch s {
	case "", "all":
		return ExitWhenAllClosed, nil
	case "first":
		return ExitOnFirstClosed, nil
	}
	return ExitWhenAllClosed, &schema.ConfigError{Token: s, Reason: "unknown exit policy"}
}
