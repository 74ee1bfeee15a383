package llm

import "context"

type contextKey string

const (
	purposeKey contextKey = "llm_purpose"
	runKey     contextKey = "llm_run"
)

// WithPurpose attaches a purpose label to the context for event logging,
// e.g. "question-gen" or "question-batch".
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

// WithRun tags every call made under ctx with a generation run ID so the
// calls of one batch run can be grouped later.
func WithRun(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runKey, runID)
}

// RunFrom returns the run ID attached by WithRun, or "".
func RunFrom(ctx context.Context) string {
	v, _ := ctx.Value(runKey).(string)
	return v
}
