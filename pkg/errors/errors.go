package errors

import (
	"fmt"
	"strings"
	"time"
)

// CommsError is the structured error type used across f451-comms.
type CommsError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Provider  string                 `json:"provider,omitempty"`
	Attribute string                 `json:"attribute,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	// Cause is the wrapped original error, not serialized.
	Cause error `json:"-"`
}

// Error implements the error interface.
func (e *CommsError) Error() string {
	if e.Provider != "" && e.Attribute != "" {
		return fmt.Sprintf("%s: %s (provider: %s, attribute: %s)", e.Code, e.Message, e.Provider, e.Attribute)
	}
	if e.Provider != "" {
		return fmt.Sprintf("%s: %s (provider: %s)", e.Code, e.Message, e.Provider)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *CommsError) Unwrap() error {
	return e.Cause
}

// Is matches errors by code so callers can use errors.Is with sentinel codes.
func (e *CommsError) Is(target error) bool {
	if targetErr, ok := target.(*CommsError); ok {
		return e.Code == targetErr.Code
	}
	return false
}

// WithCause attaches the original error.
func (e *CommsError) WithCause(cause error) *CommsError {
	e.Cause = cause
	return e
}

// WithProvider sets the provider name.
func (e *CommsError) WithProvider(provider string) *CommsError {
	e.Provider = provider
	return e
}

// WithAttribute sets the offending attribute keyword.
func (e *CommsError) WithAttribute(attribute string) *CommsError {
	e.Attribute = attribute
	return e
}

// WithMetadata attaches a metadata entry.
func (e *CommsError) WithMetadata(key string, value interface{}) *CommsError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// IsRetryable returns whether the error is worth retrying.
func (e *CommsError) IsRetryable() bool {
	return IsRetryable(e.Code)
}

// New creates a new CommsError.
func New(code ErrorCode, message string) *CommsError {
	return &CommsError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Newf creates a new CommsError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *CommsError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a CommsError.
func Wrap(err error, code ErrorCode, message string) *CommsError {
	return New(code, message).WithCause(err)
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *CommsError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// Convenience constructors matching the error taxonomy.

// NewInvalidAttribute creates an invalid-attribute error.
func NewInvalidAttribute(message string) *CommsError {
	return New(ErrInvalidAttribute, fmt.Sprintf("Invalid attribute error: %s", message))
}

// NewMissingAttribute creates a missing-attribute error.
func NewMissingAttribute(message string) *CommsError {
	return New(ErrMissingAttribute, message)
}

// NewInvalidProvider creates an invalid-provider error for a channel name.
func NewInvalidProvider(provider string) *CommsError {
	return New(ErrInvalidProvider, fmt.Sprintf("Invalid service provider: %s", provider)).WithProvider(provider)
}

// NewCommunications creates a vendor communications error from a list of
// per-send error strings.
func NewCommunications(provider string, errs []string) *CommsError {
	return New(ErrCommunications, fmt.Sprintf("Communications errors: %s", strings.Join(errs, ", "))).
		WithProvider(provider)
}

// NewCredentials creates a hard credential-validation error.
func NewCredentials(provider, message string) *CommsError {
	return New(ErrInvalidCredentials, message).WithProvider(provider)
}

// GetErrorCode extracts the error code from any error.
func GetErrorCode(err error) ErrorCode {
	if commsErr, ok := err.(*CommsError); ok {
		return commsErr.Code
	}
	return ErrInternal
}

// IsAttributeError checks whether err is an attribute validation error.
func IsAttributeError(err error) bool {
	if commsErr, ok := err.(*CommsError); ok {
		return GetCategory(commsErr.Code) == "attribute"
	}
	return false
}

// IsVendorError checks whether err originated from a vendor call.
func IsVendorError(err error) bool {
	if commsErr, ok := err.(*CommsError); ok {
		return GetCategory(commsErr.Code) == "vendor"
	}
	return false
}

// MultiError accumulates errors from independent per-item operations.
type MultiError struct {
	Errors []error `json:"errors"`
}

// NewMultiError creates an empty MultiError.
func NewMultiError() *MultiError {
	return &MultiError{Errors: make([]error, 0)}
}

// Error implements the error interface.
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("multiple errors occurred (%d errors)", len(e.Errors))
}

// Add appends a non-nil error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// IsEmpty returns true when no errors are present.
func (e *MultiError) IsEmpty() bool {
	return len(e.Errors) == 0
}

// ErrorOrNil returns the multi-error when non-empty, otherwise nil.
func (e *MultiError) ErrorOrNil() error {
	if e.IsEmpty() {
		return nil
	}
	return e
}

// First returns the first error, or nil.
func (e *MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}
