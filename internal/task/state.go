package task

import "fmt"

// State is a position in the run's state machine.
type State int

const (
	StateConfigured State = iota
	StateExecuting
	StateParsing
	StateBuilding
	StatePublishing
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateConfigured: "CONFIGURED",
	StateExecuting:  "EXECUTING",
	StateParsing:    "PARSING",
	StateBuilding:   "BUILDING",
	StatePublishing: "PUBLISHING",
	StateDone:       "DONE",
	StateFailed:     "FAILED",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// IsTerminal reports whether the run can no longer change state.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// canFail reports whether a failure may be raised from s.
func (s State) canFail() bool {
	return s >= StateExecuting && s <= StatePublishing
}

func isAllowedTransition(from, to State) bool {
	if to == StateFailed {
		return from.canFail()
	}
	switch from {
	case StateConfigured:
		return to == StateExecuting
	case StateExecuting:
		return to == StateParsing
	case StateParsing:
		return to == StateBuilding
	case StateBuilding:
		return to == StatePublishing
	case StatePublishing:
		return to == StateDone
	default:
		return false
	}
}
