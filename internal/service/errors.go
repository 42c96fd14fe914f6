package service

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindDomain
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindDomain:
		return "domain"
	default:
		return "unexpected"
	}
}

// Error carries a client-facing message and the kind that decides the HTTP
// status. Err, when set, is the underlying cause and is only shown to clients
// outside production.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func Invalid(format string, args ...any) *Error {
	return newError(KindValidation, nil, format, args...)
}

func Domain(err error, format string, args ...any) *Error {
	return newError(KindDomain, err, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, nil, format, args...)
}

func Unexpected(err error, format string, args ...any) *Error {
	return newError(KindUnexpected, err, format, args...)
}

// KindOf reports the kind of err; errors outside the taxonomy are unexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

var (
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrProductNotFound    = errors.New("product not found")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrNotCancellable     = errors.New("only pending orders can be cancelled")
)
