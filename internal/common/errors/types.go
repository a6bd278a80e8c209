package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypeUnsupported represents an unknown provider/service combination
	ErrTypeUnsupported ErrorType = "unsupported_combination"
	// ErrTypeMissingIdentity represents a token exchange that produced no identity assertion
	ErrTypeMissingIdentity ErrorType = "missing_identity_token"
	// ErrTypeNotFound represents resource not found errors
	ErrTypeNotFound ErrorType = "not_found"
	// ErrTypeRefresh represents a provider-rejected token refresh
	ErrTypeRefresh ErrorType = "refresh"
	// ErrTypeValidation represents validation errors
	ErrTypeValidation ErrorType = "validation"
	// ErrTypeConfig represents configuration errors
	ErrTypeConfig ErrorType = "config"
	// ErrTypeConnection represents connection-related errors
	ErrTypeConnection ErrorType = "connection"
	// ErrTypeInternal represents internal system errors
	ErrTypeInternal ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	parts := []string{string(e.Type), e.Message}

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("code=%s", e.Code))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", e.Cause))
	}

	if len(e.Context) > 0 {
		contextParts := make([]string, 0, len(e.Context))
		for k, v := range e.Context {
			contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, fmt.Sprintf("context={%s}", strings.Join(contextParts, ", ")))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// UnsupportedCombinationError creates an error for a provider/service pair
// the scope registry does not recognize. This is a caller error.
func UnsupportedCombinationError(provider, service string) *AppError {
	return &AppError{
		Type:    ErrTypeUnsupported,
		Message: fmt.Sprintf("unsupported service %s for provider %s", service, provider),
	}
}

// MissingIdentityTokenError creates an error for a token exchange that
// returned no identity token. There is nothing to key a credential record
// on, so this is fatal and not retryable.
func MissingIdentityTokenError() *AppError {
	return &AppError{
		Type:    ErrTypeMissingIdentity,
		Message: "provider returned no identity token",
	}
}

// NotFoundError creates a new not found error
func NotFoundError(resource string) *AppError {
	return &AppError{
		Type:    ErrTypeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// RefreshError creates an error wrapping a provider refresh rejection.
// A revoked refresh token surfaces through here, never silently.
func RefreshError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeRefresh,
		Message: msg,
		Cause:   cause,
	}
}

// ValidationError creates a new validation error
func ValidationError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeValidation,
		Message: msg,
	}
}

// InvalidDateFormatError creates a validation error for a SINCE date string
// that does not match the D[D]-Mon-YYYY pattern.
func InvalidDateFormatError(value string) *AppError {
	return &AppError{
		Type:    ErrTypeValidation,
		Message: fmt.Sprintf("date string must be in DD-Mon-YYYY format, got: %s", value),
		Code:    "invalid_date_format",
	}
}

// NoValidAddressesError creates a validation error for an address filter
// whose entries were all blank.
func NoValidAddressesError(field string) *AppError {
	return &AppError{
		Type:    ErrTypeValidation,
		Message: fmt.Sprintf("no valid %s addresses provided", field),
		Code:    "no_valid_addresses",
	}
}

// ConfigError creates a new configuration error
func ConfigError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeConfig,
		Message: msg,
	}
}

// ConnectionError creates a new connection error
func ConnectionError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeConnection,
		Message: msg,
		Cause:   cause,
	}
}

// InternalError creates a new internal error
func InternalError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeInternal,
		Message: msg,
		Cause:   cause,
	}
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	if err == nil {
		return false
	}

	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}

	return appErr.Type == errType
}

// GetType returns the error type if it's an AppError, otherwise returns ErrTypeInternal
func GetType(err error) ErrorType {
	if err == nil {
		return ""
	}

	appErr, ok := err.(*AppError)
	if !ok {
		return ErrTypeInternal
	}

	return appErr.Type
}
