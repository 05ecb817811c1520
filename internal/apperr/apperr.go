// Package apperr defines the error taxonomy shared by the service and
// storage layers. Handlers map a Kind to an HTTP status at the boundary;
// anything without a Kind is treated as internal and never leaks details
// to the caller.
package apperr

import (
	"github.com/pkg/errors"
)

type Kind int

const (
	Internal Kind = iota
	Validation
	Unauthorized
	Forbidden
	NotFound
	Conflict
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf walks the cause chain and returns the outermost Kind.
// Errors without a Kind are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func IsNotFound(err error) bool { return IsKind(err, NotFound) }

func IsForbidden(err error) bool { return IsKind(err, Forbidden) }

func IsConflict(err error) bool { return IsKind(err, Conflict) }

func IsValidation(err error) bool { return IsKind(err, Validation) }
