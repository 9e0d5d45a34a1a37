package quizgen

import (
	"context"
	"errors"
	"fmt"
)

// GenerationError reports a failure to obtain a response from the LLM
// provider. Err is the provider error and may wrap context.Canceled or
// context.DeadlineExceeded.
type GenerationError struct {
	Provider string
	Model    string
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("question generation via %s failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("question generation via %s/%s failed: %v", e.Provider, e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Timeout reports whether the provider call ran out of time.
func (e *GenerationError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}
