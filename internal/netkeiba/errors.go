// Package netkeiba fetches race cards and odds tables from the netkeiba data
// provider.
package netkeiba

// ProviderError represents errors from provider operations
type ProviderError struct {
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e ProviderError) Error() string {
	if e.Err != nil {
		return "netkeiba: " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return "netkeiba: " + e.Code + ": " + e.Message
}

func (e ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// NewProviderError creates a new provider error
func NewProviderError(code, message string, err error) ProviderError {
	return ProviderError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
