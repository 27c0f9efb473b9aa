package otelx

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bakkerme/feedboard/internal/core"
)

const instrumentationPrefix = "github.com/bakkerme/feedboard/"

// Components that own a tracer.
const (
	ComponentFeed  = "feed"
	ComponentFetch = "feedjson"
	ComponentPage  = "page"
)

const AttrFeed = attribute.Key("feed.name")

// Tracer returns the tracer of one pipeline component.
func Tracer(component string) trace.Tracer {
	return otel.Tracer(instrumentationPrefix + component)
}

// Start opens a span on the component's tracer. The session id and feed name
// carried by ctx are added as attributes.
func Start(ctx context.Context, component, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer(component).Start(ctx, name, trace.WithAttributes(append(ContextAttributes(ctx), attrs...)...))
}

// ContextAttributes lists the correlation values found in ctx.
func ContextAttributes(ctx context.Context) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if id := core.SessionIDFromContext(ctx); id != "" {
		attrs = append(attrs, AttrSessionID.String(id))
	}
	if feed := core.FeedFromContext(ctx); feed != "" {
		attrs = append(attrs, AttrFeed.String(feed))
	}
	return attrs
}

// Fail marks span as failed with err.
func Fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
