// Package reqctx carries per-webhook request metadata through a context.
package reqctx

import (
	"context"
	"errors"
)

type contextKey string

const (
	requestIDKey contextKey = "requestID"
	providerKey  contextKey = "provider"
)

// ErrNoRequestIDInContext is returned when no request ID is found in context
var ErrNoRequestIDInContext = errors.New("no request ID found in context")

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFrom extracts the request ID from the context
func RequestIDFrom(ctx context.Context) (string, error) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	if !ok || requestID == "" {
		return "", ErrNoRequestIDInContext
	}
	return requestID, nil
}

// WithProvider records which chat provider delivered the webhook.
func WithProvider(ctx context.Context, provider string) context.Context {
	return context.WithValue(ctx, providerKey, provider)
}

// ProviderFrom returns the provider name, or "" when none was recorded.
func ProviderFrom(ctx context.Context) string {
	p, _ := ctx.Value(providerKey).(string)
	return p
}
