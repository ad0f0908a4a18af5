package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidAPIKey is returned for HTTP 401
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrRateLimited is returned once 429 retries are exhausted
	ErrRateLimited = errors.New("rate limited")

	// ErrUnparseable is returned when the reply is not a valid verdict even
	// after the strict retry
	ErrUnparseable = errors.New("could not parse response")

	// ErrTimeout is returned when a request exceeds its deadline
	ErrTimeout = errors.New("request timed out")

	// ErrTransport covers network failures
	ErrTransport = errors.New("request failed")
)

// APIError is any other non-2xx response
type APIError struct {
	StatusCode int
	StatusText string
}

func (e *APIError) Error() string {
	if e.StatusText == "" {
		return fmt.Sprintf("API error: %d", e.StatusCode)
	}
	return fmt.Sprintf("API error: %d %s", e.StatusCode, e.StatusText)
}

// Message maps an evaluation error to the text shown in the popup
func Message(err error) string {
	var apiErr *APIError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidAPIKey):
		return "API key is invalid. Check your settings."
	case errors.Is(err, ErrRateLimited):
		return "Rate limited. Try again in a few seconds."
	case errors.As(err, &apiErr):
		return apiErr.Error()
	case errors.Is(err, ErrUnparseable):
		return "Could not parse the model response."
	case errors.Is(err, ErrTimeout):
		return "Request timed out."
	case errors.Is(err, context.Canceled):
		return "Request cancelled."
	case errors.Is(err, ErrTransport):
		return "Could not reach the API. Check the base URL and your connection."
	default:
		return err.Error()
	}
}

// IsSettingsError reports whether the user fixes err in settings
func IsSettingsError(err error) bool {
	return errors.Is(err, ErrInvalidAPIKey)
}
