package api

import (
	"context"
	"time"
)

// ExecutionContext describes a single execute call. It is created fresh for
// every call, handed to the handler through its context and attached to the
// resulting event for correlation. It is never persisted.
type ExecutionContext struct {
	RequestID string                 `json:"requestId"`
	StartTime time.Time              `json:"startTime"`
	UserID    string                 `json:"userId,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// CallOptions are the caller-supplied parts of an ExecutionContext.
type CallOptions struct {
	UserID   string
	Metadata map[string]interface{}
}

type executionContextKey struct{}

// WithExecutionContext returns a copy of ctx carrying ec.
func WithExecutionContext(ctx context.Context, ec ExecutionContext) context.Context {
	return context.WithValue(ctx, executionContextKey{}, ec)
}

// ExecutionContextFrom extracts the ExecutionContext installed by the registry.
func ExecutionContextFrom(ctx context.Context) (ExecutionContext, bool) {
	ec, ok := ctx.Value(executionContextKey{}).(ExecutionContext)
	return ec, ok
}
