package citation

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by citation providers.
var (
	// ErrNotFound indicates the provider answered but has no usable record.
	ErrNotFound = errors.New("paper not found")

	// ErrAuthError indicates an authentication error (missing/invalid API key).
	ErrAuthError = errors.New("provider authentication error")

	// ErrRateLimited indicates the provider's rate limit has been exceeded.
	ErrRateLimited = errors.New("provider rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with provider")

	// ErrInvalidResponse indicates a response body that could not be parsed.
	ErrInvalidResponse = errors.New("invalid response from provider")

	// ErrAborted indicates resolution stopped because the context ended.
	// It is the only error Resolve returns.
	ErrAborted = errors.New("citation lookup aborted")
)

// APIError represents an unexpected HTTP status from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	DOI        string // For context in paper-related errors
}

func (e *APIError) Error() string {
	if e.DOI != "" {
		return fmt.Sprintf("%s API error (status %d): %s (doi: %s)", e.Provider, e.StatusCode, e.Message, e.DOI)
	}
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// IsNotFound returns true if the error indicates a paper was not found.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsAuthError returns true if the error indicates an authentication problem.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthError) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// statusValidator maps HTTP error statuses onto the error taxonomy for the
// named provider.
func statusValidator(provider string) func(*http.Response) error {
	return func(resp *http.Response) error {
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%w: %s status %d", ErrNotFound, provider, resp.StatusCode)
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return fmt.Errorf("%w: %s status %d", ErrAuthError, provider, resp.StatusCode)
		case resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %s status %d", ErrRateLimited, provider, resp.StatusCode)
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			return &APIError{
				Provider:   provider,
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
			}
		}
		return nil
	}
}
