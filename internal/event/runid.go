package event

import "context"

type runIDKey struct{}

// WithRunID attaches the invocation id to ctx so handlers can correlate output.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the id stored by WithRunID or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}
