package ai

import "context"

type sessionIDKey struct{}

// WithSessionID tags a context with the chat session identifier so
// tool handlers can attribute side effects (feedback, audit rows) to
// the conversation they happened in.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// SessionIDFrom returns the session identifier, or "" when the
// context was never tagged.
func SessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}
