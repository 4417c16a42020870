package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrSessionClosed = errors.New("session is closed")

// NetworkError is a transport level failure: DNS, connection reset, timeout.
// It is the only error the session retries.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

type RateLimitError struct {
	Provider   string
	RetryAfter *int
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter != nil {
		return fmt.Sprintf("%s: rate limit exceeded, retry after %ds", e.Provider, *e.RetryAfter)
	}
	return fmt.Sprintf("%s: rate limit exceeded", e.Provider)
}

type AuthenticationError struct {
	Provider string
	Status   int
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s: authentication failed: HTTP %d", e.Provider, e.Status)
}

// HTTPError is any other 4xx/5xx answer.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request failed with status %v, body: %v", e.Status, e.Body)
}

type ResponseParseError struct {
	Provider string
	Message  string
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("%s: unexpected response: %s", e.Provider, e.Message)
}

type LocationNotFoundError struct {
	Location string
}

func (e *LocationNotFoundError) Error() string {
	return fmt.Sprintf("location not found: %q", e.Location)
}

// ProviderError is what provider entry points return, whatever went wrong underneath.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func NewProviderError(provider, message string, cause error) *ProviderError {
	return &ProviderError{Provider: provider, Message: message, Err: cause}
}

func IsNetwork(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

func IsAuthentication(err error) bool {
	var target *AuthenticationError
	return errors.As(err, &target)
}

func IsRateLimit(err error) bool {
	var target *RateLimitError
	return errors.As(err, &target)
}
