package rtos

import (
	"errors"
	"fmt"
)

// Code categorizes an Error per the kernel's error taxonomy: fatal
// kernel violations, handle errors, builder misuse, and the benign
// conditions that are values rather than failures.
type Code string

const (
	// CodeFault marks a fatal kernel violation: missing current task,
	// stack overflow, wrong execution mode, out-of-memory at task
	// creation. A real Port never returns once it has observed one (it
	// enters a debug-trap loop); port/sim panics instead so tests can
	// observe it. This code exists for the application-facing wrapper
	// around that panic, not for the kernel's own internal path.
	CodeFault Code = "fault"

	// CodeInvalidHandle marks a TaskHandle accessor called after the
	// task has been destroyed.
	CodeInvalidHandle Code = "invalid handle"

	// CodeBuilderMisuse marks ArgsBuilder.AddArg called beyond its
	// declared capacity.
	CodeBuilderMisuse Code = "builder misuse"

	// CodeInvalidConfig marks an Init or NewTask argument that fails
	// validation, e.g. a stack depth below the configured minimum.
	CodeInvalidConfig Code = "invalid configuration"
)

// Error is the kernel's structured error type: the operation that
// failed, the task it concerns (if any), an error category, and an
// optional wrapped cause.
type Error struct {
	Op     string // operation that failed, e.g. "NewTask", "TaskHandle.Destroy"
	TaskID uint64 // 0 if not applicable
	Code   Code
	Msg    string
	Cause  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.TaskID != 0 {
		return fmt.Sprintf("rtos: %s: %s (tid=%d)", e.Op, msg, e.TaskID)
	}
	return fmt.Sprintf("rtos: %s: %s", e.Op, msg)
}

// Unwrap returns the wrapped cause for errors.Is/errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is provides errors.Is support: two *Error values match if their Code
// matches, the same loose comparison the teacher uses for its legacy
// error constants.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

// Sentinels usable with errors.Is; each carries only a Code.
var (
	ErrInvalidHandle = &Error{Code: CodeInvalidHandle}
	ErrBuilderMisuse = &Error{Code: CodeBuilderMisuse}
	ErrFault         = &Error{Code: CodeFault}
	ErrInvalidConfig = &Error{Code: CodeInvalidConfig}
)

// NewFaultError builds a CodeFault error.
func NewFaultError(op, msg string) *Error {
	return &Error{Op: op, Code: CodeFault, Msg: msg}
}

// NewHandleError builds a CodeInvalidHandle error for the given task.
func NewHandleError(op string, tid uint64) *Error {
	return &Error{Op: op, TaskID: tid, Code: CodeInvalidHandle, Msg: "task handle refers to a destroyed task"}
}

// NewBuilderError builds a CodeBuilderMisuse error.
func NewBuilderError(op, msg string) *Error {
	return &Error{Op: op, Code: CodeBuilderMisuse, Msg: msg}
}

// NewConfigError builds a CodeInvalidConfig error, optionally wrapping
// cause.
func NewConfigError(op, msg string, cause error) *Error {
	return &Error{Op: op, Code: CodeInvalidConfig, Msg: msg, Cause: cause}
}

// IsCode reports whether err is (or wraps) an *Error with the given
// Code.
func IsCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
