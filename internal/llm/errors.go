package llm

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownProvider is returned by the registry for provider names it
// has no factory for.
var ErrUnknownProvider = errors.New("unknown LLM provider")

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the LLM returned content that does not
// conform to the requested schema.
type ErrInvalidResponse struct {
	Content string
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrAuth indicates the provider rejected the credentials (401/403).
// Never retried.
type ErrAuth struct {
	Err error
}

func (e *ErrAuth) Error() string {
	return fmt.Sprintf("LLM provider rejected credentials: %v", e.Err)
}

func (e *ErrAuth) Unwrap() error { return e.Err }

// ErrBadRequest indicates the provider rejected the request itself
// (4xx other than 401/403/429). Never retried.
type ErrBadRequest struct {
	StatusCode int
	Err        error
}

func (e *ErrBadRequest) Error() string {
	return fmt.Sprintf("LLM request rejected (status %d): %v", e.StatusCode, e.Err)
}

func (e *ErrBadRequest) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit.
type ErrMaxTokensExceeded struct {
	Content string
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// UnknownModelError is returned by the pricing catalog for a model id it
// has no pricing for.
type UnknownModelError struct {
	ModelID string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("no pricing registered for model %q", e.ModelID)
}
