package llm

import "context"

// Purpose labels why a request was made. It is recorded with every request
// event and summed over by `rpscam llm usage`.
type Purpose string

const (
	// PurposeClassify scores one camera frame for the round being played.
	PurposeClassify Purpose = "classify"

	purposeUnlabelled Purpose = "unlabelled"
)

type purposeKey struct{}

// WithPurpose attaches p to ctx for the logging decorator.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, p)
}

// PurposeFrom returns the label attached by WithPurpose.
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey{}).(Purpose); ok && p != "" {
		return p
	}
	return purposeUnlabelled
}
