package quiz

import "fmt"

// Stages reported by CancellationError.
const (
	StageResolve  = "resolve"
	StageFetch    = "fetch"
	StageGenerate = "generate"
)

// CancellationError reports that the caller canceled the request. Stage
// names the step that was running. Deadlines are not cancellations and
// surface as the failing stage's own timeout error.
type CancellationError struct {
	Stage string
	Err   error
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("quiz generation canceled during %s: %v", e.Stage, e.Err)
}

func (e *CancellationError) Unwrap() error { return e.Err }
