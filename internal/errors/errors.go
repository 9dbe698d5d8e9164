package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error taxonomy for the session and trust boundary
var (
	// Fatal, raised before any network I/O when the device verdict is compromised
	ErrSecurityViolation = errors.New("security violation")

	// Access token rejected by the backend; recovered once by the refresher
	ErrAuthenticationExpired = errors.New("authentication expired")

	// Terminal: the session was cleared and the user must log in again
	ErrSessionInvalid = errors.New("session invalid")

	// Transient transport or backend failure
	ErrNetwork = errors.New("network failure")

	// Local input rejected before reaching the network
	ErrValidation = errors.New("validation failure")

	// Storage errors
	ErrPartialSession = errors.New("access and refresh tokens must be stored together")
	ErrStorage        = errors.New("storage failure")
	ErrSessionChanged = errors.New("session changed since it was read")

	// Backend answered 401
	ErrUnauthorized = errors.New("unauthorized")
)

// SecurityViolationError carries the reasons a device was judged untrustworthy.
type SecurityViolationError struct {
	Reasons []string
}

func (e *SecurityViolationError) Error() string {
	if len(e.Reasons) == 0 {
		return ErrSecurityViolation.Error()
	}
	return fmt.Sprintf("%s: %s", ErrSecurityViolation.Error(), e.Reason())
}

// Reason returns the comma-joined list of verdict reasons.
func (e *SecurityViolationError) Reason() string {
	return strings.Join(e.Reasons, ", ")
}

func (e *SecurityViolationError) Unwrap() error { return ErrSecurityViolation }

// StatusError is returned when the backend answers with a non-success status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Code)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Message)
}

func (e *StatusError) Unwrap() []error {
	if e.Code == http.StatusUnauthorized {
		return []error{ErrNetwork, ErrUnauthorized}
	}
	return []error{ErrNetwork}
}

// ValidationError reports a rejected local input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is a passthrough to the standard library so callers need a single import
func New(text string) error {
	return errors.New(text)
}

// Join is a passthrough to errors.Join
func Join(errs ...error) error {
	return errors.Join(errs...)
}
