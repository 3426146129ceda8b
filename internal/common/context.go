package common

import (
	"context"
	"time"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
	ContextKeySupplier  contextKey = "supplier"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

// WithSupplier records the matched template's supplier on the context.
func WithSupplier(ctx context.Context, supplier string) context.Context {
	return context.WithValue(ctx, ContextKeySupplier, supplier)
}

// SupplierFromContext extracts the supplier from context
func SupplierFromContext(ctx context.Context) string {
	if supplier, ok := ctx.Value(ContextKeySupplier).(string); ok {
		return supplier
	}
	return ""
}

// WithTimeout creates a context with the specified timeout
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
