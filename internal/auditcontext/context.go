// Package auditcontext carries request-scoped actor metadata into the
// audit trail without widening every service signature.
package auditcontext

import (
	"context"
	"strings"
)

type actorKey struct{}
type requestIDKey struct{}
type ipAddressKey struct{}
type userAgentKey struct{}

type actor struct {
	Type string
	ID   string
}

// WithActor stores the acting principal (e.g. "user", "system") in the context.
func WithActor(ctx context.Context, actorType, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor{Type: actorType, ID: actorID})
}

// ActorFromContext returns the acting principal, if set.
func ActorFromContext(ctx context.Context) (actorType, actorID string, ok bool) {
	if ctx == nil {
		return "", "", false
	}
	value, found := ctx.Value(actorKey{}).(actor)
	if !found {
		return "", "", false
	}
	return value.Type, value.ID, true
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, strings.TrimSpace(requestID))
}

func RequestIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, requestIDKey{})
}

func WithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipAddressKey{}, strings.TrimSpace(ip))
}

func IPAddressFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ipAddressKey{})
}

func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, userAgentKey{}, strings.TrimSpace(ua))
}

func UserAgentFromContext(ctx context.Context) string {
	return stringFromContext(ctx, userAgentKey{})
}

func stringFromContext(ctx context.Context, key any) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(key).(string)
	return value
}
