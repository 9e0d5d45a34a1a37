package wiki

import (
	"fmt"
	"time"

	"github.com/abhisek/wikiquiz/internal/lang"
)

// ArticleNotFoundError is returned when a topic resolves to no article in
// the requested language.
type ArticleNotFoundError struct {
	Topic    string
	Language lang.Language
}

func (e *ArticleNotFoundError) Error() string {
	return fmt.Sprintf("no %s article found for %q", e.Language, e.Topic)
}

// TransientFetchError wraps failures that may succeed on a later attempt:
// network errors, timeouts, HTTP 429 and 5xx responses.
type TransientFetchError struct {
	Op         string // "resolve" or "fetch"
	StatusCode int    // 0 for network-level failures
	TimedOut   bool
	Err        error

	retryAfter time.Duration
}

func (e *TransientFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("wiki %s: HTTP %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("wiki %s: %v", e.Op, e.Err)
}

func (e *TransientFetchError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a timeout.
func (e *TransientFetchError) Timeout() bool { return e.TimedOut }
