package task

import (
	"errors"
	"fmt"
	"strconv"
)

// Kind classifies why a run failed.
type Kind int

const (
	KindUnknown Kind = iota
	KindProcessSpawn
	KindDecode
	KindOverflow
	KindBuild
	KindPublish
	KindPersistence
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindProcessSpawn:
		return "process_spawn"
	case KindDecode:
		return "decode"
	case KindOverflow:
		return "numeric_overflow"
	case KindBuild:
		return "build"
	case KindPublish:
		return "publish"
	case KindPersistence:
		return "persistence"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Error is the tagged failure of a run.
type Error struct {
	Kind  Kind
	Stage State
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "unknown error"
	}
	switch e.Kind {
	case KindProcessSpawn:
		return "could not run algorithm: " + e.Err.Error()
	case KindOverflow:
		return "numeric overflow: " + e.Err.Error()
	case KindConfig:
		return "invalid configuration: " + e.Err.Error()
	default:
		return e.Err.Error()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// classify tags err with fallback unless it carries a numeric range error,
// which is always reported as an overflow.
func classify(fallback Kind, err error) Kind {
	if errors.Is(err, strconv.ErrRange) {
		return KindOverflow
	}
	return fallback
}

// errPanic wraps a recovered panic value.
func errPanic(v any) error {
	return fmt.Errorf("panic: %v", v)
}
