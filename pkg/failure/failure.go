// Package failure defines the error taxonomy of scenario steps.
//
// Every step failure is immediate and never retried. Callers classify errors
// with errors.Is against the sentinel kinds below, or errors.As against the
// concrete types to read expected/actual details.
package failure

import (
	"errors"
	"fmt"
)

var (
	// ErrArgument marks a structurally invalid request (unknown verb, body on GET).
	ErrArgument = errors.New("invalid argument")
	// ErrNoResponse is returned when a step needs a previous response and no call was made yet.
	ErrNoResponse = errors.New("no response recorded yet")
	// ErrShape marks a response of the wrong shape (map vs list vs scalar).
	ErrShape = errors.New("shape mismatch")
	// ErrEvaluation marks a path expression that cannot be evaluated.
	ErrEvaluation = errors.New("evaluation error")
	// ErrAssertion marks a well-shaped value that did not match the expectation.
	ErrAssertion = errors.New("assertion failed")
)

// ArgumentError describes an invalid request built by a step.
type ArgumentError struct {
	Msg string
}

func (e *ArgumentError) Error() string { return "invalid argument: " + e.Msg }

func (e *ArgumentError) Is(target error) bool { return target == ErrArgument }

// Argumentf builds an ArgumentError.
func Argumentf(format string, args ...any) error {
	return &ArgumentError{Msg: fmt.Sprintf(format, args...)}
}

// ShapeError reports that Subject had shape Actual where Expected was required.
type ShapeError struct {
	Subject  string
	Expected string
	Actual   string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape mismatch: %s: expected %s, got %s", e.Subject, e.Expected, e.Actual)
}

func (e *ShapeError) Is(target error) bool { return target == ErrShape }

// EvaluationError reports a path that could not be evaluated.
type EvaluationError struct {
	Path   string
	Reason string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("cannot evaluate %q: %s", e.Path, e.Reason)
}

func (e *EvaluationError) Is(target error) bool { return target == ErrEvaluation }

// AssertionError reports an expected/actual mismatch on Subject.
type AssertionError struct {
	Subject  string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Subject, e.Expected, e.Actual)
}

func (e *AssertionError) Is(target error) bool { return target == ErrAssertion }
