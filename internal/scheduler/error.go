package scheduler

import (
	"errors"
	"fmt"
)

// ErrorKind discriminates the failures reported by this package.
type ErrorKind int

const (
	// KindInvalidArgument covers bad caller input: both or neither job body,
	// unknown scheduler names, negative walltimes, non-positive counts.
	KindInvalidArgument ErrorKind = iota + 1
	// KindMissingConfig is a required setting (e.g. the PBS output directory) left unset.
	KindMissingConfig
	// KindAlreadyExists is a target that must not exist yet (e.g. a farm directory).
	KindAlreadyExists
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindMissingConfig:
		return "missing configuration"
	case KindAlreadyExists:
		return "already exists"
	default:
		return "unknown error"
	}
}

// Sentinel errors for use with errors.Is
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrMissingConfig   = errors.New("missing configuration")
	ErrAlreadyExists   = errors.New("already exists")
)

// Error is the structured error returned by header, script and farm builders.
type Error struct {
	Kind ErrorKind // What went wrong
	Op   string    // Operation, e.g. "header", "job string", "farm"
	Msg  string    // Human-readable detail
	Err  error     // Underlying error, if any
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg != "" {
			msg += ": "
		}
		msg += e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match an Error against the sentinel for its kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidArgument:
		return e.Kind == KindInvalidArgument
	case ErrMissingConfig:
		return e.Kind == KindMissingConfig
	case ErrAlreadyExists:
		return e.Kind == KindAlreadyExists
	}
	return false
}

// SubmissionError represents a submit command that could not run or exited non-zero
type SubmissionError struct {
	Scheduler string // Scheduler name
	Script    string // Script path passed to the submit command
	ExitCode  int    // Exit status, -1 if the process never started
	Output    string // Combined stdout/stderr
	Err       error  // Underlying error
}

func (e *SubmissionError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s submission failed for %s (exit %d): %v\nOutput: %s",
			e.Scheduler, e.Script, e.ExitCode, e.Err, e.Output)
	}
	return fmt.Sprintf("%s submission failed for %s (exit %d): %v",
		e.Scheduler, e.Script, e.ExitCode, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewInvalidArgument creates a KindInvalidArgument error
func NewInvalidArgument(op string, format string, a ...interface{}) *Error {
	return &Error{Kind: KindInvalidArgument, Op: op, Msg: fmt.Sprintf(format, a...)}
}

// NewMissingConfig creates a KindMissingConfig error
func NewMissingConfig(op string, format string, a ...interface{}) *Error {
	return &Error{Kind: KindMissingConfig, Op: op, Msg: fmt.Sprintf(format, a...)}
}

// NewAlreadyExists wraps err as a KindAlreadyExists error for path
func NewAlreadyExists(op string, path string, err error) *Error {
	return &Error{Kind: KindAlreadyExists, Op: op, Msg: path, Err: err}
}

// NewSubmissionError creates a new SubmissionError
func NewSubmissionError(scheduler string, script string, exitCode int, output string, err error) *SubmissionError {
	return &SubmissionError{
		Scheduler: scheduler,
		Script:    script,
		ExitCode:  exitCode,
		Output:    output,
		Err:       err,
	}
}

// IsInvalidArgument checks if an error is a KindInvalidArgument Error
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsMissingConfig checks if an error is a KindMissingConfig Error
func IsMissingConfig(err error) bool {
	return errors.Is(err, ErrMissingConfig)
}

// IsAlreadyExists checks if an error is a KindAlreadyExists Error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsSubmissionError checks if an error is a SubmissionError
func IsSubmissionError(err error) bool {
	var se *SubmissionError
	return errors.As(err, &se)
}
