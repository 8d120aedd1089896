// Package diag produces the diagnostics for registry failures.
//
// Callers in the handle package never format their own error messages;
// they pick a category code and pass along whatever context they have
// (an address, a tag, the value that failed to parse). This package
// turns that into a human-readable message plus a machine-readable
// code that survives wrapping.
package diag

import (
	"errors"
	"fmt"
)

// Code classifies a failure. Codes are stable; messages are not.
type Code int

const (
	// CodeGeneric is a failure with no more specific category.
	CodeGeneric Code = iota
	// CodeNullPointer reports an operation on a null address.
	CodeNullPointer
	// CodeNotRegistered reports an operation that required an existing
	// compatible registration and found none.
	CodeNotRegistered
	// CodeTypeMismatch reports a registration whose tag is not
	// compatible with the expected tag.
	CodeTypeMismatch
	// CodeInvalidFormat reports an external representation that failed
	// to parse.
	CodeInvalidFormat
	// CodeAllocation reports storage exhaustion. By convention this is
	// fatal to the operation chain and is never retried.
	CodeAllocation
	// CodeAlreadyExists reports creation of something that is already
	// present, such as a second supertag edge for one subtag.
	CodeAlreadyExists
)

// String returns the code's wire-stable name.
func (c Code) String() string {
	switch c {
	case CodeNullPointer:
		return "NULL_POINTER"
	case CodeNotRegistered:
		return "NOT_REGISTERED"
	case CodeTypeMismatch:
		return "TYPE_MISMATCH"
	case CodeInvalidFormat:
		return "INVALID_FORMAT"
	case CodeAllocation:
		return "ALLOCATION"
	case CodeAlreadyExists:
		return "ALREADY_EXISTS"
	default:
		return "GENERIC"
	}
}

// Error is a categorized diagnostic. Value, when set, is the offending
// value the message refers to.
type Error struct {
	Code    Code
	Message string
	Value   string
	cause   error
}

func (e *Error) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %s (value %q)", e.Code, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is an *Error with the same code, so that
// errors.Is(err, &Error{Code: CodeNotRegistered}) works across
// wrapping.
func (e *Error) Is(target error) bool {
	var de *Error
	if !errors.As(target, &de) {
		return false
	}
	return de.Code == e.Code
}

// Sentinel values for errors.Is matching. These carry no context; the
// constructors below produce the errors actually returned.
var (
	ErrNullPointer   = &Error{Code: CodeNullPointer, Message: "pointer is NULL"}
	ErrNotRegistered = &Error{Code: CodeNotRegistered, Message: "not registered"}
	ErrTypeMismatch  = &Error{Code: CodeTypeMismatch, Message: "type mismatch"}
	ErrInvalidFormat = &Error{Code: CodeInvalidFormat, Message: "invalid format"}
	ErrAllocation    = &Error{Code: CodeAllocation, Message: "allocation failure"}
	ErrAlreadyExists = &Error{Code: CodeAlreadyExists, Message: "already exists"}
)

// NullPointer reports an operation attempted on a null address.
func NullPointer() error {
	return &Error{Code: CodeNullPointer, Message: "pointer is NULL"}
}

// NotRegistered reports that value (a formatted handle) has no
// registration.
func NotRegistered(value string) error {
	return &Error{
		Code:    CodeNotRegistered,
		Message: "pointer validation failed: not registered",
		Value:   value,
	}
}

// WrongTag reports that value is registered under an incompatible tag.
func WrongTag(value string) error {
	return &Error{
		Code:    CodeTypeMismatch,
		Message: "pointer validation failed: type does not match registration",
		Value:   value,
	}
}

// TypeMismatch reports an actual/expected tag pair that is not
// compatible. Both tags are rendered the way handles render them, with
// an empty string for the void tag.
func TypeMismatch(actual, expected string) error {
	return &Error{
		Code:    CodeTypeMismatch,
		Message: fmt.Sprintf("expected pointer^%s, got pointer^%s", expected, actual),
	}
}

// InvalidFormat reports that value failed to parse as a handle.
func InvalidFormat(value string) error {
	return &Error{
		Code:    CodeInvalidFormat,
		Message: "invalid pointer format",
		Value:   value,
	}
}

// Allocation reports that storage for what could not be obtained.
func Allocation(what string) error {
	return &Error{
		Code:    CodeAllocation,
		Message: fmt.Sprintf("failed to allocate %s", what),
	}
}

// Exists reports that what is already present.
func Exists(what string) error {
	return &Error{
		Code:    CodeAlreadyExists,
		Message: "already exists",
		Value:   what,
	}
}

// Wrap attaches a category to an underlying error without discarding
// it. errors.Is and errors.As continue to see the cause.
func Wrap(code Code, message string, cause error) error {
	return &Error{Code: code, Message: message, cause: cause}
}

// CodeOf extracts the category from err, or CodeGeneric if err carries
// none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeGeneric
}
