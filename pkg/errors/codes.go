// Package errors provides structured error types for f451-comms.
package errors

// ErrorCode identifies a class of f451-comms error.
type ErrorCode string

// Attribute error codes. These represent caller programming errors and are
// always raised as hard failures before any vendor call is attempted.
const (
	// ErrInvalidAttribute indicates a value failed its format or bounds validation.
	ErrInvalidAttribute ErrorCode = "INVALID_ATTRIBUTE"

	// ErrMissingAttribute indicates a required value is blank or empty.
	ErrMissingAttribute ErrorCode = "MISSING_ATTRIBUTE"
)

// Channel error codes.
const (
	// ErrInvalidProvider indicates a channel selector resolved to no enabled channel.
	ErrInvalidProvider ErrorCode = "INVALID_PROVIDER"

	// ErrProviderDisabled indicates a specific channel is not configured.
	ErrProviderDisabled ErrorCode = "PROVIDER_DISABLED"
)

// Configuration error codes.
const (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig ErrorCode = "INVALID_CONFIG"

	// ErrMissingCredentials indicates missing authentication credentials.
	ErrMissingCredentials ErrorCode = "MISSING_CREDENTIALS"

	// ErrInvalidCredentials indicates credentials the vendor rejected at
	// client construction time.
	ErrInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
)

// Vendor error codes. These degrade to failure Responses rather than
// raised errors unless the caller opts into strict raising.
const (
	// ErrCommunications indicates the underlying vendor call signaled failure.
	ErrCommunications ErrorCode = "COMMUNICATIONS_ERROR"

	// ErrVendorRejected indicates the vendor rejected the request.
	ErrVendorRejected ErrorCode = "VENDOR_REJECTED"

	// ErrNetworkTimeout indicates a network timeout.
	ErrNetworkTimeout ErrorCode = "NETWORK_TIMEOUT"

	// ErrConnectionFailed indicates connection failure.
	ErrConnectionFailed ErrorCode = "CONNECTION_FAILED"

	// ErrRateLimitExceeded indicates the vendor rate limit was hit.
	ErrRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
)

// ErrInternal indicates an unexpected internal error.
const ErrInternal ErrorCode = "INTERNAL_ERROR"

// codeInfo holds classification metadata for an error code.
type codeInfo struct {
	Category  string
	Retryable bool
}

var errorCodeInfoMap = map[ErrorCode]codeInfo{
	ErrInvalidAttribute:   {Category: "attribute", Retryable: false},
	ErrMissingAttribute:   {Category: "attribute", Retryable: false},
	ErrInvalidProvider:    {Category: "channel", Retryable: false},
	ErrProviderDisabled:   {Category: "channel", Retryable: false},
	ErrInvalidConfig:      {Category: "configuration", Retryable: false},
	ErrMissingCredentials: {Category: "configuration", Retryable: false},
	ErrInvalidCredentials: {Category: "configuration", Retryable: false},
	ErrCommunications:     {Category: "vendor", Retryable: true},
	ErrVendorRejected:     {Category: "vendor", Retryable: false},
	ErrNetworkTimeout:     {Category: "vendor", Retryable: true},
	ErrConnectionFailed:   {Category: "vendor", Retryable: true},
	ErrRateLimitExceeded:  {Category: "vendor", Retryable: true},
	ErrInternal:           {Category: "internal", Retryable: false},
}

// GetCategory returns the category for an error code.
func GetCategory(code ErrorCode) string {
	if info, ok := errorCodeInfoMap[code]; ok {
		return info.Category
	}
	return "unknown"
}

// IsRetryable returns whether errors with this code are worth retrying.
func IsRetryable(code ErrorCode) bool {
	if info, ok := errorCodeInfoMap[code]; ok {
		return info.Retryable
	}
	return false
}
