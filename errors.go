package osal

import (
	"errors"
	"fmt"

	"github.com/osalkit/osal/internal/abi"
)

// Error represents a structured OSAL error with the operation, module, and
// resource context needed to diagnose a failure without parsing Msg.
type Error struct {
	Op         string     // Operation that failed (e.g., "MutexLock", "QueueSend")
	Module     string     // Subsystem that raised it (e.g., "mutex", "timer", "device")
	ResourceID uint64     // Handle or index of the resource involved, 0 if not applicable
	Status     abi.Status // Machine-checkable status code
	Msg        string     // Human-readable message
	Inner      error      // Wrapped error, if any
}

func (e *Error) Error() string {
	var parts []string

	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.Module != "" {
		parts = append(parts, fmt.Sprintf("module=%s", e.Module))
	}
	if e.ResourceID != 0 {
		parts = append(parts, fmt.Sprintf("resource=%d", e.ResourceID))
	}

	msg := e.Msg
	if msg == "" {
		msg = e.Status.String()
	}

	if len(parts) > 0 {
		return fmt.Sprintf("osal: %s (%s)", msg, parts[0])
	}
	return fmt.Sprintf("osal: %s", msg)
}

func (e *Error) Unwrap() error {
	return e.Inner
}

// Is supports errors.Is comparison against a bare abi.Status as well as
// against another *Error with the same Status.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if se, ok := target.(statusSentinel); ok {
		return e.Status == se.status
	}
	if te, ok := target.(*Error); ok {
		return e.Status == te.Status
	}
	return false
}

// statusSentinel lets callers write errors.Is(err, osal.StatusError(abi.Timeout))
// without constructing a full *Error.
type statusSentinel struct{ status abi.Status }

func (s statusSentinel) Error() string { return s.status.String() }

// StatusError returns a comparable sentinel for errors.Is checks against a
// bare status code, e.g. errors.Is(err, osal.StatusError(abi.Timeout)).
func StatusError(status abi.Status) error {
	return statusSentinel{status: status}
}

// NewError creates a structured error for op/module with no resource context.
func NewError(op, module string, status abi.Status, msg string) *Error {
	return &Error{Op: op, Module: module, Status: status, Msg: msg}
}

// NewResourceError creates a structured error tied to a specific handle or index.
func NewResourceError(op, module string, resourceID uint64, status abi.Status, msg string) *Error {
	return &Error{Op: op, Module: module, ResourceID: resourceID, Status: status, Msg: msg}
}

// WrapError wraps inner with OSAL operation context, preserving Status and
// ResourceID when inner is already a structured *Error.
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}
	if oe, ok := inner.(*Error); ok {
		return &Error{
			Op:         op,
			Module:     oe.Module,
			ResourceID: oe.ResourceID,
			Status:     oe.Status,
			Msg:        oe.Msg,
			Inner:      oe.Inner,
		}
	}
	return &Error{
		Op:     op,
		Status: abi.GenericError,
		Msg:    inner.Error(),
		Inner:  inner,
	}
}

// IsStatus reports whether err (or any error it wraps) carries the given status.
func IsStatus(err error, status abi.Status) bool {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Status == status
	}
	return false
}
