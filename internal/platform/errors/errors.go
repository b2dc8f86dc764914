package errors

import (
	stderrors "errors"

	"github.com/louisbranch/postpos/internal/platform/errors/i18n"
)

// Sentinel values for errors.Is matching by code.
var (
	ErrSchema              = New(CodeSchema, "schema error")
	ErrConstraintViolation = New(CodeConstraintViolation, "constraint violation")
	ErrStorageUnavailable  = New(CodeStorageUnavailable, "storage unavailable")
	ErrLedgerCorruption    = New(CodeLedgerCorruption, "ledger corruption")
	ErrNotFound            = New(CodeNotFound, "record not found")
)

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Internal message (for logs/telemetry)
	Metadata map[string]string // Additional context for templating
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithMetadata creates a domain error with metadata for i18n templating.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithMetadata creates a domain error with both metadata and a cause.
func WrapWithMetadata(code Code, message string, metadata map[string]string, cause error) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
		Cause:    cause,
	}
}

// CodeOf returns the code of the first *Error in the chain, or CodeUnknown.
func CodeOf(err error) Code {
	var domainErr *Error
	if stderrors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeUnknown
}

// Localize renders the user-facing message for err in the given locale.
// Errors outside this package fall back to the generic unknown message.
func Localize(err error, locale string) string {
	if err == nil {
		return ""
	}
	catalog := i18n.GetCatalog(locale)
	var domainErr *Error
	if !stderrors.As(err, &domainErr) {
		return catalog.Format(string(CodeUnknown), nil)
	}
	return catalog.Format(string(domainErr.Code), domainErr.Metadata)
}
