package llm

import "context"

type contextKey string

const (
	purposeKey   contextKey = "llm_purpose"
	requesterKey contextKey = "llm_requester"
)

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// WithRequester attaches the id of whoever asked for the generation.
func WithRequester(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requesterKey, id)
}

// RequesterFrom returns the requester id, or "" when none was attached.
func RequesterFrom(ctx context.Context) string {
	v, _ := ctx.Value(requesterKey).(string)
	return v
}
