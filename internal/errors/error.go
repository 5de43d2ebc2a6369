package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime  Category = "runtime"
	CategoryProtocol Category = "protocol"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
)

// DidactError is a structured error with a registered code, suggestions, and documentation.
type DidactError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (runtime, config, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *DidactError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *DidactError) Unwrap() error {
	return e.Wrapped
}

// Is matches another *DidactError with the same code.
func (e *DidactError) Is(target error) bool {
	t, ok := target.(*DidactError)
	if !ok || t.Code == "" {
		return false
	}
	return e.Code == t.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *DidactError) WithSuggestion(s string) *DidactError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *DidactError) WithDetail(d string) *DidactError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted detailed explanation to the error.
func (e *DidactError) WithDetailf(format string, args ...any) *DidactError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *DidactError) Wrap(err error) *DidactError {
	e.Wrapped = err
	return e
}

// New creates a DidactError from a registered error code.
func New(code string) *DidactError {
	template, ok := registry[code]
	if !ok {
		return &DidactError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &DidactError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new DidactError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *DidactError {
	return &DidactError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a DidactError.
func FromError(err error, code string) *DidactError {
	if err == nil {
		return nil
	}
	var de *DidactError
	if stderrors.As(err, &de) {
		return de
	}
	return New(code).Wrap(err)
}

// Fault panics with the registered error for code, with detail formatted
// from format and args. It is used for invariant violations that indicate a
// programming error rather than a recoverable condition.
func Fault(code string, format string, args ...any) {
	panic(New(code).WithDetailf(format, args...))
}

// AsFault reports whether a recovered panic value is a *DidactError.
func AsFault(r any) (*DidactError, bool) {
	if r == nil {
		return nil, false
	}
	switch v := r.(type) {
	case *DidactError:
		return v, true
	case error:
		var de *DidactError
		if stderrors.As(v, &de) {
			return de, true
		}
	}
	return nil, false
}
