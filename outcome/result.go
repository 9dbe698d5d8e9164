package outcome

import (
	"errors"

	apperrors "github.com/jrsteele09/go-admin-client/internal/errors"
)

// Kind discriminates a Result
type Kind int

const (
	KindPending Kind = iota
	KindSuccess
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFailure:
		return "failure"
	default:
		return "pending"
	}
}

// Result is the envelope handed to the UI layer: pending, a value, or a failure with
// a message and an optional status code.
type Result[T any] struct {
	kind    Kind
	value   T
	message string
	code    int
	err     error
}

func Pending[T any]() Result[T] {
	return Result[T]{kind: KindPending}
}

func Success[T any](value T) Result[T] {
	return Result[T]{kind: KindSuccess, value: value}
}

// Failure builds a failure without an underlying error. code 0 means no status code.
func Failure[T any](message string, code int) Result[T] {
	return Result[T]{kind: KindFailure, message: message, code: code, err: errors.New(message)}
}

// FromError builds a failure from err, taking the status code from a StatusError in its chain.
// The error is kept so callers can test it against the error taxonomy.
func FromError[T any](err error) Result[T] {
	r := Result[T]{kind: KindFailure, message: err.Error(), err: err}

	var statusErr *apperrors.StatusError
	if errors.As(err, &statusErr) {
		r.code = statusErr.Code
		if statusErr.Message != "" {
			r.message = statusErr.Message
		}
	}

	var violation *apperrors.SecurityViolationError
	if errors.As(err, &violation) {
		r.message = violation.Error()
	}
	return r
}

func (r Result[T]) Kind() Kind { return r.kind }

func (r Result[T]) IsPending() bool { return r.kind == KindPending }
func (r Result[T]) IsSuccess() bool { return r.kind == KindSuccess }
func (r Result[T]) IsFailure() bool { return r.kind == KindFailure }

// Value returns the success value and true, or the zero value and false.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.kind == KindSuccess
}

// Message is the failure message, empty unless the result is a failure.
func (r Result[T]) Message() string { return r.message }

// Code is the backend status code of a failure, or 0.
func (r Result[T]) Code() int { return r.code }

// Err is the failure cause, nil unless the result is a failure.
func (r Result[T]) Err() error { return r.err }

// Match calls exactly one of the handlers according to the result's kind. nil handlers are skipped.
func (r Result[T]) Match(pending func(), success func(T), failure func(message string, code int)) {
	switch r.kind {
	case KindPending:
		if pending != nil {
			pending()
		}
	case KindSuccess:
		if success != nil {
			success(r.value)
		}
	case KindFailure:
		if failure != nil {
			failure(r.message, r.code)
		}
	}
}

// Map converts a success value, passing pending and failure through unchanged.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	switch r.kind {
	case KindSuccess:
		return Success(fn(r.value))
	case KindFailure:
		return Result[U]{kind: KindFailure, message: r.message, code: r.code, err: r.err}
	default:
		return Pending[U]()
	}
}
