package tools

import "context"

type threadIDKey struct{}

// WithThreadID injects the active thread identifier so tools that persist
// per-thread records can attribute them correctly.
func WithThreadID(ctx context.Context, threadID string) context.Context {
	return context.WithValue(ctx, threadIDKey{}, threadID)
}

// ThreadIDFromContext extracts the active thread identifier, if any.
func ThreadIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(threadIDKey{}).(string)
	return id, ok && id != ""
}
