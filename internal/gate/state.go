package gate

import (
	"github.com/ppiankov/hookgate/internal/engine"
	"github.com/ppiankov/hookgate/internal/model"
)

// State is a gate's position in Idle -> Evaluating -> {Allowed, Warned, Blocked}.
type State int

const (
	Idle State = iota
	Evaluating
	Allowed
	Warned
	Blocked
)

var stateNames = map[State]string{
	Idle:       "idle",
	Evaluating: "evaluating",
	Allowed:    "allowed",
	Warned:     "warned",
	Blocked:    "blocked",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "invalid"
}

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s == Allowed || s == Warned || s == Blocked
}

func stateFor(d model.Decision) State {
	switch d {
	case model.Block:
		return Blocked
	case model.Warn:
		return Warned
	default:
		return Allowed
	}
}

// Outcome is the terminal result of one gate invocation.
type Outcome struct {
	State     State
	Kind      ActionKind
	Evaluated bool
	Verdict   engine.Verdict
	Matched   []string
	Response  Response
	// Err is set when classification degraded to allow.
	Err error
}

func passThrough(kind ActionKind) Outcome {
	return Outcome{
		State:    Allowed,
		Kind:     kind,
		Verdict:  engine.Verdict{Decision: model.Allow},
		Response: Response{Decision: model.Allow},
	}
}

func failOpen(kind ActionKind, err error) Outcome {
	o := passThrough(kind)
	o.Err = err
	return o
}
