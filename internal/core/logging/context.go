package logging

import "context"

type contextKey string

const (
	repositoryKey contextKey = "repository"
	updateIDKey   contextKey = "update_id"
)

// WithRepository adds a repository identifier to the context.
func WithRepository(ctx context.Context, repositoryID string) context.Context {
	return context.WithValue(ctx, repositoryKey, repositoryID)
}

// WithUpdateID adds an update identifier to the context.
func WithUpdateID(ctx context.Context, updateID string) context.Context {
	return context.WithValue(ctx, updateIDKey, updateID)
}

// GetRepository retrieves the repository identifier from the context.
// Returns empty string if not present.
func GetRepository(ctx context.Context) string {
	if id, ok := ctx.Value(repositoryKey).(string); ok {
		return id
	}
	return ""
}

// GetUpdateID retrieves the update identifier from the context.
// Returns empty string if not present.
func GetUpdateID(ctx context.Context) string {
	if id, ok := ctx.Value(updateIDKey).(string); ok {
		return id
	}
	return ""
}
