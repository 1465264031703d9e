// Package apperrors defines structured application error types,
// allowing for a clear distinction between error classes (configuration,
// invalid input, numeric instability, non-convergence) and for carrying the
// underlying cause.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// Every error type implements Unwrap() or Is() so that errors.Is() and
// errors.As() work against the sentinel values below.
package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess             = 0   // Indicates successful execution.
	ExitErrorGeneric        = 1   // Indicates a generic error.
	ExitErrorTimeout        = 2   // Indicates the operation timed out.
	ExitErrorMismatch       = 3   // Indicates that solvers disagree on the fitted curve.
	ExitErrorConfig         = 4   // Indicates a configuration error.
	ExitErrorInvalidInput   = 5   // Indicates rejected curve data.
	ExitErrorNumeric        = 6   // Indicates a numeric instability in the model.
	ExitErrorNonConvergence = 7   // Indicates the fit did not reach its tolerance.
	ExitErrorCanceled       = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// Sentinel errors for the fitting error taxonomy. Concrete error types below
// report themselves as one of these through their Is method.
var (
	// ErrInvalidInput marks curve data that cannot be fitted: mismatched
	// sequence lengths, duplicate maturities or values outside the model domain.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNumericInstability marks a model evaluation that would divide by zero
	// or produce a non-finite value.
	ErrNumericInstability = errors.New("numeric instability")
	// ErrNonConvergence marks a fit that stopped before reaching its tolerance.
	ErrNonConvergence = errors.New("fit did not converge")
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// ValidationError represents rejected input data. It is used for curve
// construction, API request validation and start-parameter parsing.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message describes why validation failed.
	Message string
	// Value is the invalid value (optional, may be nil).
	Value any
}

// Error returns the error message for a ValidationError.
func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Is reports ValidationError as ErrInvalidInput.
func (e ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// NewValidationError creates a new ValidationError.
//
// Parameters:
//   - field: The name of the field that failed validation.
//   - message: A description of why validation failed.
//   - value: The invalid value (optional).
//
// Returns:
//   - error: A new ValidationError instance.
func NewValidationError(field, message string, value any) error {
	return ValidationError{Field: field, Message: message, Value: value}
}

// NumericError reports a model evaluation that left the numerically safe
// domain, for example a decay parameter that reached zero.
type NumericError struct {
	// Op names the evaluation that failed (e.g. "yield").
	Op string
	// Param is the offending parameter or input name.
	Param string
	// Value is the offending value.
	Value float64
}

// Error returns the error message for a NumericError.
func (e NumericError) Error() string {
	return fmt.Sprintf("%s: numeric instability: %s=%g", e.Op, e.Param, e.Value)
}

// Is reports NumericError as ErrNumericInstability.
func (e NumericError) Is(target error) bool { return target == ErrNumericInstability }

// NewNumericError creates a new NumericError.
func NewNumericError(op, param string, value float64) error {
	return NumericError{Op: op, Param: param, Value: value}
}

// NonConvergenceError is returned by solvers that stop on their iteration
// budget before the error tolerance is met. The solver returns its best-so-far
// result alongside this error.
type NonConvergenceError struct {
	// Solver is the name of the solver that gave up.
	Solver string
	// Iterations is the number of iterations performed.
	Iterations int
	// BestError is the lowest sum of squared errors reached.
	BestError float64
	// Tolerance is the error threshold that was not reached.
	Tolerance float64
}

// Error returns the error message for a NonConvergenceError.
func (e NonConvergenceError) Error() string {
	return fmt.Sprintf("%s: no convergence after %d iterations (best error %.6g, tolerance %.6g)",
		e.Solver, e.Iterations, e.BestError, e.Tolerance)
}

// Is reports NonConvergenceError as ErrNonConvergence.
func (e NonConvergenceError) Is(target error) bool { return target == ErrNonConvergence }

// FitError encapsulates a fitting error while preserving the original cause.
type FitError struct {
	// Solver is the solver that produced the error.
	Solver string
	// Cause is the underlying error that triggered this fit error.
	Cause error
}

// Error returns the error message, prefixed with the solver name.
func (e FitError) Error() string {
	if e.Solver == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s: %v", e.Solver, e.Cause)
}

// Unwrap returns the original wrapped error.
func (e FitError) Unwrap() error { return e.Cause }

// ServerError represents errors that occur in the HTTP server component.
// It wraps an underlying error with additional context specific to the server operation.
type ServerError struct {
	// Message is a descriptive message about the server error.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// Error returns the error message for a ServerError.
func (e ServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e ServerError) Unwrap() error { return e.Cause }

// NewServerError creates a new ServerError with a message and optional cause.
func NewServerError(message string, cause error) error {
	return ServerError{Message: message, Cause: cause}
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// It returns nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCodeFor maps an error to the process exit code that best describes it.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, new(ConfigError)):
		return ExitErrorConfig
	case errors.Is(err, ErrInvalidInput):
		return ExitErrorInvalidInput
	case errors.Is(err, ErrNumericInstability):
		return ExitErrorNumeric
	case errors.Is(err, ErrNonConvergence):
		return ExitErrorNonConvergence
	default:
		return ExitErrorGeneric
	}
}
