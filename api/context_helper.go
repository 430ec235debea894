package api

import (
	"context"
	"time"
)

// QueryTimeout is the default timeout for database queries
var QueryTimeout = 10 * time.Second

type contextKey string

const (
	identityKey  contextKey = "identity"
	reviewerKey  contextKey = "reviewer"
	requestIDKey contextKey = "requestId"
)

// WithQueryTimeout creates a context with query timeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}

// WithIdentity stores the authenticated identity on the context
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom returns the authenticated identity, if any
func IdentityFrom(ctx context.Context) (string, bool) {
	identity, ok := ctx.Value(identityKey).(string)
	return identity, ok && identity != ""
}

// WithReviewer stores the administrator id from an admin token
func WithReviewer(ctx context.Context, reviewerID string) context.Context {
	return context.WithValue(ctx, reviewerKey, reviewerID)
}

// ReviewerFrom returns the administrator id, if any
func ReviewerFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(reviewerKey).(string)
	return id, ok && id != ""
}

// RequestIDFrom returns the id stamped by RequestLogger
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
