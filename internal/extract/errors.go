package extract

import (
	"errors"
	"fmt"
)

// Failure kinds. Match them with errors.Is.
var (
	ErrUnavailable = errors.New("llm unavailable")
	ErrTimeout     = errors.New("llm timed out")
	ErrUnparseable = errors.New("llm response unparseable")
	ErrInvalid     = errors.New("llm response invalid")
)

// Error is a classified extraction failure.
type Error struct {
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the failure kind. A timeout is also an unavailable service.
func (e *Error) Is(target error) bool {
	if target == e.Kind {
		return true
	}
	return e.Kind == ErrTimeout && target == ErrUnavailable
}

func newError(kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
