// Package requestctx carries per-request values (correlation id, client ip) through context.
package requestctx

import "context"

type ctxKey int

const (
	correlationIDKey ctxKey = iota
	clientIPKey
)

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

func CorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP returns the caller address recorded by the HTTP layer, or "unknown".
func ClientIP(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if ip, ok := ctx.Value(clientIPKey).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}
