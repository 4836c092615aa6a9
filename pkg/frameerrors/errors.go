// Package frameerrors provides structured errors for the dataframe engine. Every
// failure the engine surfaces carries a category, a message, optional key-value
// details and the call stack at the point it was raised.
//
// # Basic Usage
//
//	err := frameerrors.New(frameerrors.ErrorTypeType, "column is not numeric").
//	    WithDetail("column", 3).
//	    WithDetail("type", "string")
//
//	if frameerrors.IsType(err, frameerrors.ErrorTypeType) {
//	    // caller decides what to do; the engine never recovers internally
//	}
//
// # Error Types
//
// The categories mirror the engine's failure taxonomy: configuration errors
// raised while building tables, type errors raised when a numeric cell is
// required, shape errors raised by row ingestion, and index errors raised when a
// column position (or an unresolved name) does not exist. Query, connection and
// timeout errors come from external tabular sources.
//
// # Thread Safety
//
// Error values are not safe for concurrent modification. Attach details before
// sharing an error across goroutines.
package frameerrors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of an error.
type ErrorType string

const (
	// ErrorTypeInternal represents engine bugs and broken invariants
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeConfig represents invalid builder or engine configuration
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeType represents a cell whose type does not fit the operation
	ErrorTypeType ErrorType = "type"
	// ErrorTypeShape represents row data that disagrees with the inferred table shape
	ErrorTypeShape ErrorType = "shape"
	// ErrorTypeIndex represents an out-of-range column or row position
	ErrorTypeIndex ErrorType = "index"
	// ErrorTypeQuery represents a failed query against a tabular source
	ErrorTypeQuery ErrorType = "query"
	// ErrorTypeConnection represents a failure to reach a tabular source
	ErrorTypeConnection ErrorType = "connection"
	// ErrorTypeTimeout represents an operation that exceeded its deadline
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeFormat represents an encoding or decoding failure
	ErrorTypeFormat ErrorType = "format"
)

// Error is a categorized error with context.
//
// Fields:
//   - Type: category used by callers to pick a handling strategy
//   - Message: human-readable description
//   - Cause: the wrapped error, if any
//   - Details: key-value context (column index, row, expected type, ...)
//   - Stack: call stack captured at creation
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame is a single frame of a captured call stack.
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error so errors.Is and errors.As see the chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail attaches a key-value pair and returns the same error for chaining.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates an error of the given type and captures the caller's stack.
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf is New with a format string.
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps err with a category and message. The stack of an already
// structured error is preserved. Wrap returns nil when err is nil.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsRetryable reports whether err belongs to a category that may succeed on a
// second attempt. Only failures of external sources qualify; the engine itself
// is deterministic and never retries.
func IsRetryable(err error) bool {
	return IsType(err, ErrorTypeConnection) || IsType(err, ErrorTypeTimeout)
}

// IsType reports whether err (or any error it wraps) is an *Error of errType.
func IsType(err error, errType ErrorType) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Type == errType {
			return true
		}
		err = e.Cause
	}
	return false
}

// captureStack records up to maxFrames frames, skipping the top skip frames.
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
