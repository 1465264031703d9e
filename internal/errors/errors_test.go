// Package apperrors provides tests for application error types.
package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	t.Parallel()
	err := NewConfigError("invalid value %g for flag %s", -1.0, "--speed")
	if err.Error() != "invalid value -1 for flag --speed" {
		t.Errorf("unexpected message %q", err.Error())
	}
	var configErr ConfigError
	if !errors.As(err, &configErr) {
		t.Error("expected error to be ConfigError type")
	}
}

func TestTaxonomySentinels(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		sentinel error
		others   []error
	}{
		{
			name:     "validation is invalid input",
			err:      NewValidationError("yields", "length mismatch", nil),
			sentinel: ErrInvalidInput,
			others:   []error{ErrNumericInstability, ErrNonConvergence},
		},
		{
			name:     "numeric error is numeric instability",
			err:      NewNumericError("yield", "t", 0),
			sentinel: ErrNumericInstability,
			others:   []error{ErrInvalidInput, ErrNonConvergence},
		},
		{
			name:     "non convergence",
			err:      NonConvergenceError{Solver: "descent", Iterations: 3},
			sentinel: ErrNonConvergence,
			others:   []error{ErrInvalidInput, ErrNumericInstability},
		},
		{
			name:     "wrapped in fit error",
			err:      FitError{Solver: "bfgs", Cause: fmt.Errorf("step: %w", NewNumericError("yield", "b", 0))},
			sentinel: ErrNumericInstability,
			others:   []error{ErrNonConvergence},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false, want true", tt.err, tt.sentinel)
			}
			for _, other := range tt.others {
				if errors.Is(tt.err, other) {
					t.Errorf("errors.Is(%v, %v) = true, want false", tt.err, other)
				}
			}
		})
	}
}

func TestNonConvergenceErrorMessage(t *testing.T) {
	t.Parallel()
	err := NonConvergenceError{Solver: "descent", Iterations: 42, BestError: 0.25, Tolerance: 0.0039}
	want := "descent: no convergence after 42 iterations (best error 0.25, tolerance 0.0039)"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestFitError(t *testing.T) {
	t.Parallel()
	cause := errors.New("boom")
	err := FitError{Solver: "nelder-mead", Cause: cause}
	if err.Error() != "nelder-mead: boom" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("FitError should unwrap to its cause")
	}
	if (FitError{Cause: cause}).Error() != "boom" {
		t.Error("FitError without solver should print the cause only")
	}
}

func TestServerError(t *testing.T) {
	t.Parallel()
	cause := errors.New("address in use")
	err := NewServerError("server failed to start", cause)
	if err.Error() != "server failed to start: address in use" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("ServerError should unwrap to its cause")
	}
	if NewServerError("plain", nil).Error() != "plain" {
		t.Error("ServerError without cause should print the message only")
	}
}

func TestWrapError(t *testing.T) {
	t.Parallel()
	if WrapError(nil, "context") != nil {
		t.Error("WrapError(nil) should return nil")
	}
	base := errors.New("base")
	wrapped := WrapError(base, "loading %s", "curve.toml")
	if wrapped.Error() != "loading curve.toml: base" {
		t.Errorf("unexpected message %q", wrapped.Error())
	}
	if !errors.Is(wrapped, base) {
		t.Error("wrapped error should match base")
	}
}

func TestIsContextError(t *testing.T) {
	t.Parallel()
	if !IsContextError(context.Canceled) || !IsContextError(fmt.Errorf("x: %w", context.DeadlineExceeded)) {
		t.Error("context errors not detected")
	}
	if IsContextError(errors.New("other")) {
		t.Error("plain error reported as context error")
	}
}

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitSuccess},
		{context.DeadlineExceeded, ExitErrorTimeout},
		{context.Canceled, ExitErrorCanceled},
		{NewConfigError("bad"), ExitErrorConfig},
		{NewValidationError("terms", "bad", nil), ExitErrorInvalidInput},
		{NewNumericError("yield", "b", 0), ExitErrorNumeric},
		{NonConvergenceError{}, ExitErrorNonConvergence},
		{errors.New("other"), ExitErrorGeneric},
	}
	for _, tt := range tests {
		if got := ExitCodeFor(tt.err); got != tt.want {
			t.Errorf("ExitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
