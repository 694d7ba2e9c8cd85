package prompt

import (
	"errors"
	"fmt"
)

// Kind is the externally visible failure class of a facade call.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindMissingArgument
	KindRender
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindMissingArgument:
		return "missing_argument"
	case KindRender:
		return "render_error"
	default:
		return "internal"
	}
}

// Error is returned by every failing facade operation.
type Error struct {
	Kind     Kind
	Name     string
	Argument string // set for KindMissingArgument
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("prompt not found: %s", e.Name)
	case KindMissingArgument:
		return fmt.Sprintf("missing required argument: %s", e.Argument)
	case KindRender:
		return fmt.Sprintf("render %s: %v", e.Name, e.Err)
	default:
		return fmt.Sprintf("internal error: %v", e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
