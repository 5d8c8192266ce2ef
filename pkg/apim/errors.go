package apim

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError represents an error from the Azure Resource Manager API.
type APIError struct {
	Code    string     `json:"code"              yaml:"code"`
	Message string     `json:"message"           yaml:"message"`
	Target  string     `json:"target,omitempty"  yaml:"target,omitempty"`
	Details []APIError `json:"details,omitempty" yaml:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return e.Code
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ResponseError represents the error response from the API.
type ResponseError struct {
	StatusCode int      `json:"-"`
	Err        APIError `json:"error"`
}

// Error implements the error interface for ResponseError.
func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s (status: %d)", e.Err.Error(), e.StatusCode)
}

// Unwrap exposes the embedded APIError.
func (e *ResponseError) Unwrap() error {
	return &e.Err
}

// Common ARM error codes.
const (
	ErrorCodeResourceNotFound      = "ResourceNotFound"
	ErrorCodeNotFound              = "NotFound"
	ErrorCodeResourceGroupNotFound = "ResourceGroupNotFound"
	ErrorCodeAuthenticationFailed  = "AuthenticationFailed"
	ErrorCodeInvalidAuthToken      = "InvalidAuthenticationToken"
	ErrorCodeAuthorizationFailed   = "AuthorizationFailed"
)

// Common static errors that can be wrapped with context.
var (
	ErrConfigRequired           = errors.New("config is required")
	ErrResourceGroupRequired    = errors.New("resource group is required")
	ErrSubscriptionIDRequired   = errors.New("subscription ID is required")
	ErrServiceNotFound          = errors.New("API Management service not found")
	ErrAPINotFound              = errors.New("API not found")
	ErrNoDebugToken             = errors.New("no debug token in response")
	ErrStaticTokenCannotRefresh = errors.New("static token cannot be refreshed")
	ErrUnknownConfigKey         = errors.New("unknown configuration key")
	ErrKeyNotFound              = errors.New("key not found")
	ErrEntryExpired             = errors.New("entry expired")
)

// ExtractionError reports that a policy fragment could not be fetched or read.
type ExtractionError struct {
	FragmentID string
	Err        error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting supported models from policy fragment %q: %v", e.FragmentID, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ClassificationError reports that backends could not be enumerated.
type ClassificationError struct {
	Op  string
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classifying backends: %s: %v", e.Op, e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	respErr := &ResponseError{}
	if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
		return true
	}

	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case ErrorCodeResourceNotFound, ErrorCodeNotFound, ErrorCodeResourceGroupNotFound:
			return true
		}
	}

	return false
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	respErr := &ResponseError{}
	if errors.As(err, &respErr) && respErr.StatusCode == http.StatusUnauthorized {
		return true
	}

	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Code == ErrorCodeAuthenticationFailed || apiErr.Code == ErrorCodeInvalidAuthToken
	}

	return false
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	respErr := &ResponseError{}
	if errors.As(err, &respErr) && respErr.StatusCode == http.StatusForbidden {
		return true
	}

	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Code == ErrorCodeAuthorizationFailed
	}

	return false
}

// ParseResponseError parses an ARM error body. Bodies that are not in the
// ARM error shape are kept verbatim as the message.
func ParseResponseError(statusCode int, data []byte) *ResponseError {
	respErr := &ResponseError{StatusCode: statusCode}

	err := json.Unmarshal(data, respErr)
	if err != nil || respErr.Err.Code == "" {
		code := strings.ReplaceAll(http.StatusText(statusCode), " ", "")
		if code == "" {
			code = fmt.Sprintf("HTTP%d", statusCode)
		}

		respErr.Err = APIError{
			Code:    code,
			Message: strings.TrimSpace(string(data)),
		}
	}

	return respErr
}
