package core

import "context"

type feedKey struct{}
type sessionIDKey struct{}

func WithFeed(ctx context.Context, feed string) context.Context {
	if ctx == nil || feed == "" {
		return ctx
	}
	return context.WithValue(ctx, feedKey{}, feed)
}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil || sessionID == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

func FeedFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(feedKey{}).(string); ok {
		return v
	}
	return ""
}

func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(sessionIDKey{}).(string); ok {
		return v
	}
	return ""
}
