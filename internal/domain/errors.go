package domain

import (
	"errors"
	"fmt"
)

// Error kinds form the stable taxonomy surfaced to callers. Handlers map
// them to HTTP statuses; the workflow engine never returns anything else
// for expected failures.
var (
	ErrNotFound               = errors.New("not found")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidDependencySet   = errors.New("invalid dependency set")
	ErrSelfDependency         = errors.New("self dependency")
	ErrDependencyNotSatisfied = errors.New("dependency not satisfied")
	ErrInvalidTeamMember      = errors.New("invalid team member")
	ErrConflict               = errors.New("conflict")
)

// Error pairs a taxonomy kind with a human-readable message. Store internals
// are never carried here.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Kind }

// Errorf builds a taxonomy error with a formatted message.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return Errorf(ErrNotFound, format, args...)
}

func Forbiddenf(format string, args ...any) error {
	return Errorf(ErrForbidden, format, args...)
}

func InvalidInputf(format string, args ...any) error {
	return Errorf(ErrInvalidInput, format, args...)
}

func Conflictf(format string, args ...any) error {
	return Errorf(ErrConflict, format, args...)
}
