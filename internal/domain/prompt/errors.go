package prompt

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("prompt: not found")
	ErrMissingArgument    = errors.New("prompt: missing required argument")
	ErrInvalidName        = errors.New("prompt: name must have the form <library>:<prompt>")
	ErrInvalidFrontmatter = errors.New("prompt: invalid frontmatter")
	ErrInvalidConfig      = errors.New("prompt: invalid library configuration")
)

// MissingArgumentError names the first required argument the caller left out.
// errors.Is(err, ErrMissingArgument) holds for it.
type MissingArgumentError struct {
	Argument string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing required argument: %s", e.Argument)
}

func (e *MissingArgumentError) Unwrap() error { return ErrMissingArgument }

var _ error = (*MissingArgumentError)(nil)
