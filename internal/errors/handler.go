package apperrors

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider defines the interface for obtaining terminal color codes.
// This abstraction breaks the import cycle with cli.
type ColorProvider interface {
	Yellow() string
	Reset() string
}

// DefaultColorProvider provides no color codes (for non-terminal output).
type DefaultColorProvider struct{}

func (d DefaultColorProvider) Yellow() string { return "" }
func (d DefaultColorProvider) Reset() string  { return "" }

// HandleFitError formats and prints error messages related to failed fits.
// It distinguishes between the error classes of the fitting taxonomy to
// provide the user with specific feedback.
//
// Parameters:
//   - err: The error that occurred.
//   - duration: The duration of the fit before it failed.
//   - out: The io.Writer to which the error message will be written.
//   - colors: Provider for terminal color codes (can be nil for no colors).
//
// Returns:
//   - int: The appropriate exit code for the error type.
func HandleFitError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}

	if colors == nil {
		colors = DefaultColorProvider{}
	}

	msgSuffix := ""
	if duration > 0 {
		msgSuffix = fmt.Sprintf(" after %s%s%s", colors.Yellow(), duration, colors.Reset())
	}

	code := ExitCodeFor(err)
	switch code {
	case ExitErrorTimeout:
		fmt.Fprintf(out, "Status: Failure (Timeout). The execution limit was reached%s.\n", msgSuffix)
	case ExitErrorCanceled:
		fmt.Fprintf(out, "%sStatus: Canceled%s.%s\n", colors.Yellow(), msgSuffix, colors.Reset())
	case ExitErrorInvalidInput:
		fmt.Fprintf(out, "Status: Failure (Invalid input). %v\n", err)
	case ExitErrorNumeric:
		fmt.Fprintf(out, "Status: Failure (Numeric instability)%s. %v\n", msgSuffix, err)
	case ExitErrorNonConvergence:
		var nc NonConvergenceError
		if errors.As(err, &nc) {
			fmt.Fprintf(out, "Status: Failure (No convergence)%s. Best error %s%.6g%s after %d iterations (tolerance %.6g).\n",
				msgSuffix, colors.Yellow(), nc.BestError, colors.Reset(), nc.Iterations, nc.Tolerance)
		} else {
			fmt.Fprintf(out, "Status: Failure (No convergence)%s. %v\n", msgSuffix, err)
		}
	default:
		fmt.Fprintf(out, "Status: Failure. An unexpected error occurred: %v\n", err)
	}
	return code
}
