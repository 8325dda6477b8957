package models

import "context"

// Unexported typed keys so unrelated packages cannot collide with the
// values the middleware stamps into request contexts.

type ctxKey int

const (
	accountKey ctxKey = iota
	requestIDKey
)

// ContextWithAccount stamps the authenticated caller account
func ContextWithAccount(ctx context.Context, account AccountID) context.Context {
	return context.WithValue(ctx, accountKey, account)
}

// AccountFromContext returns the authenticated caller account, if any
func AccountFromContext(ctx context.Context) (AccountID, bool) {
	account, ok := ctx.Value(accountKey).(AccountID)
	return account, ok
}

// ContextWithRequestID stamps the request tracking id
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request tracking id, if any
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}
