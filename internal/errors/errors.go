// Package apperrors defines the error taxonomy and exit codes of sysmonitor.
package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitSuccess       = 0   // Successful run, help, or interrupt-terminated continuous mode.
	ExitErrorGeneric  = 1   // Any failure not covered below.
	ExitErrorUsage    = 2   // Invalid flags, values or extra arguments.
	ExitErrorCanceled = 130 // Interrupted before the requested work completed.
)

var (
	// ErrSourceUnavailable reports that the counter source could not be
	// read or does not carry the requested counter family.
	ErrSourceUnavailable = errors.New("counter source unavailable")
	// ErrMalformedData reports that the counter family line exists but
	// does not carry the expected fields.
	ErrMalformedData = errors.New("malformed counter data")
	// ErrInterrupted reports a user-requested shutdown.
	ErrInterrupted = errors.New("interrupted")
)

// SourceError is returned when a counter source cannot produce a snapshot.
type SourceError struct {
	// Path names the source, usually a file path.
	Path string
	// Cause is the underlying error, if any.
	Cause error
}

func (e SourceError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", ErrSourceUnavailable, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", ErrSourceUnavailable, e.Path, e.Cause)
}

// Unwrap returns the underlying cause.
func (e SourceError) Unwrap() error { return e.Cause }

// Is makes SourceError match ErrSourceUnavailable.
func (e SourceError) Is(target error) bool { return target == ErrSourceUnavailable }

// MalformedDataError is returned when counter text does not have the shape
// the family requires.
type MalformedDataError struct {
	Family string
	Reason string
}

func (e MalformedDataError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrMalformedData, e.Family, e.Reason)
}

// Is makes MalformedDataError match ErrMalformedData.
func (e MalformedDataError) Is(target error) bool { return target == ErrMalformedData }

// ConfigError represents invalid user input on the command line or in the
// environment.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// IsConfigError reports whether err carries a ConfigError.
func IsConfigError(err error) bool {
	var ce ConfigError
	return errors.As(err, &ce)
}

// IsContextError reports whether err is a context cancellation or deadline.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCode maps an error returned by a run to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case IsConfigError(err):
		return ExitErrorUsage
	case errors.Is(err, ErrInterrupted), IsContextError(err):
		return ExitErrorCanceled
	default:
		return ExitErrorGeneric
	}
}
