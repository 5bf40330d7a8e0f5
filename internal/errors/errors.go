package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a reelcraft error code.
type ErrorCode string

const (
	ErrValidation    ErrorCode = "VALIDATION_ERROR"    // 400
	ErrAuthorization ErrorCode = "AUTHORIZATION_ERROR" // 403
	ErrNotFound      ErrorCode = "NOT_FOUND"           // 404
	ErrFileNotFound  ErrorCode = "FILE_NOT_FOUND"      // 404
	ErrQuotaExceeded ErrorCode = "QUOTA_EXCEEDED"      // 429
	ErrCancelled     ErrorCode = "CANCELLED"           // 499
	ErrPersistence   ErrorCode = "PERSISTENCE_FAILURE" // 500
	ErrInternal      ErrorCode = "INTERNAL"            // 500
	ErrTransport     ErrorCode = "TRANSPORT_FAILURE"   // 502
	ErrParse         ErrorCode = "PARSE_FAILURE"       // 502
)

// Messages shown to users when a plan gate blocks an action.
const (
	MsgRefinementDenied = "Content refinement is only available for Pro and Prime plans."
	MsgQuotaExceeded    = "Usage limit exceeded. Please upgrade your plan."
)

// Error is a structured error with code, HTTP-style status, and details.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// NewValidation creates a 400 error for malformed or incomplete requests.
func NewValidation(msg string) *Error {
	return &Error{
		Code:    ErrValidation,
		Status:  400,
		Message: msg,
	}
}

// NewUnknownField creates a 400 error for a field name outside the content schema.
func NewUnknownField(name string) *Error {
	return &Error{
		Code:    ErrValidation,
		Status:  400,
		Message: fmt.Sprintf("unknown content field: %q", name),
		Details: map[string]any{"field": name},
	}
}

// NewRefinementDenied creates a 403 error for plans that cannot refine.
func NewRefinementDenied(plan string) *Error {
	return &Error{
		Code:    ErrAuthorization,
		Status:  403,
		Message: MsgRefinementDenied,
		Details: map[string]any{"plan": plan},
	}
}

// NewQuotaExceeded creates a 429 error when no NEW generation is left in the window.
func NewQuotaExceeded(plan string) *Error {
	return &Error{
		Code:    ErrQuotaExceeded,
		Status:  429,
		Message: MsgQuotaExceeded,
		Details: map[string]any{"plan": plan},
	}
}

// NewNotFound creates a 404 error for a missing session or record.
func NewNotFound(kind, identifier string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing file path.
func NewFileNotFound(path string) *Error {
	return &Error{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewCancelled creates a 499 error when the caller's context ended an operation.
func NewCancelled(op string) *Error {
	return &Error{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewTransport wraps a model invocation failure.
func NewTransport(err error) *Error {
	return &Error{
		Code:    ErrTransport,
		Status:  502,
		Message: messageOf(err, "model unavailable"),
		cause:   err,
	}
}

// NewParse wraps a failure to read model output as content.
func NewParse(msg string, err error) *Error {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &Error{
		Code:    ErrParse,
		Status:  502,
		Message: msg,
		cause:   err,
	}
}

// NewPersistence wraps a failed side-effect write.
func NewPersistence(err error) *Error {
	return &Error{
		Code:    ErrPersistence,
		Status:  500,
		Message: messageOf(err, "persistence failed"),
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *Error {
	return &Error{
		Code:    ErrInternal,
		Status:  500,
		Message: messageOf(err, "internal error"),
		cause:   err,
	}
}

// Is reports whether err is, or wraps, an *Error with the given code.
func Is(err error, code ErrorCode) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrors.As(err, &e)
	return e, ok
}

func messageOf(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	return err.Error()
}
