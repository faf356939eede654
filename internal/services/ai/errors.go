package ai

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"
)

var (
	// ErrNoChoices is returned when the API response has no choices
	ErrNoChoices = errors.New("no choices in response")
	// ErrMalformedReply is returned when the model reply is not the requested JSON
	ErrMalformedReply = errors.New("malformed model reply")
)

// APIError represents an error from the AI provider API
type APIError struct {
	Message     string
	Type        string
	Code        string
	StatusCode  int
	IsPermanent bool // true for quota errors, false for rate limits
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d, type %s): %s", e.StatusCode, e.Type, e.Message)
}

// ExtractAPIError converts an SDK error into an *APIError, or nil when err did
// not come from the API.
func ExtractAPIError(err error) *APIError {
	var sdkErr *openai.Error
	if !errors.As(err, &sdkErr) {
		return nil
	}
	return &APIError{
		Message:     sdkErr.Message,
		Type:        sdkErr.Type,
		Code:        sdkErr.Code,
		StatusCode:  sdkErr.StatusCode,
		IsPermanent: sdkErr.Code == "insufficient_quota",
	}
}

// IsRateLimitError checks if an error is a rate limit error
func IsRateLimitError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests && !apiErr.IsPermanent
	}
	return false
}

// IsQuotaError checks if an error is a quota exhaustion error
func IsQuotaError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsPermanent
	}
	return false
}
