// Package requestcontext carries request-scoped metadata (request id, client
// address, device, request time) through context.Context.
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey   struct{}
	clientIPKey    struct{}
	deviceLabelKey struct{}
	mobileKey      struct{}
	requestTimeKey struct{}
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the request id, or "" outside an HTTP request.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey{}).(string)
	return v
}

// WithDevice stores a human-readable device label ("Chrome on Android") and
// whether the caller is a mobile browser.
func WithDevice(ctx context.Context, label string, mobile bool) context.Context {
	ctx = context.WithValue(ctx, deviceLabelKey{}, label)
	return context.WithValue(ctx, mobileKey{}, mobile)
}

func DeviceLabel(ctx context.Context) string {
	v, _ := ctx.Value(deviceLabelKey{}).(string)
	return v
}

func IsMobile(ctx context.Context) bool {
	v, _ := ctx.Value(mobileKey{}).(bool)
	return v
}

// WithTime pins "now" for the rest of the request. Tests and workers use it
// to get deterministic timestamps.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Now returns the request-scoped time, falling back to time.Now().
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}
