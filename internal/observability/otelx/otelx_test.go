package otelx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/bakkerme/feedboard/internal/config"
	"github.com/bakkerme/feedboard/internal/core"
)

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), nil, config.OTelEnvConfig{})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitRejectsUnknownProtocol(t *testing.T) {
	_, err := Init(context.Background(), nil, config.OTelEnvConfig{Enabled: true, Protocol: "udp"})
	assert.Error(t, err)
}

func TestProtocolAndEndpointDefaults(t *testing.T) {
	assert.Equal(t, "grpc", protocolOrDefault(config.OTelEnvConfig{}))
	assert.Equal(t, "http/protobuf", protocolOrDefault(config.OTelEnvConfig{Protocol: "HTTP"}))
	assert.Equal(t, "localhost:4317", endpointOrDefault(config.OTelEnvConfig{}))
	assert.Equal(t, "localhost:4318", endpointOrDefault(config.OTelEnvConfig{Protocol: "http/protobuf"}))
	assert.Equal(t, "collector:4317", endpointOrDefault(config.OTelEnvConfig{Endpoint: " collector:4317 "}))
}

func TestNewResourceCarriesSessionAndCommand(t *testing.T) {
	res, err := newResource(context.Background(), "feedboard", WithSession("s-1"), WithCommand("preview"), WithSession(""))
	require.NoError(t, err)

	attrs := attribute.NewSet(res.Attributes()...)
	v, ok := attrs.Value(AttrSessionID)
	require.True(t, ok)
	assert.Equal(t, "s-1", v.AsString())
	v, ok = attrs.Value(AttrCommand)
	require.True(t, ok)
	assert.Equal(t, "preview", v.AsString())
	v, ok = attrs.Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "feedboard", v.AsString())
}

func TestServiceNameDefault(t *testing.T) {
	assert.Equal(t, "feedboard", serviceNameOrDefault(config.OTelEnvConfig{ServiceName: "  "}))
	assert.Equal(t, "site", serviceNameOrDefault(config.OTelEnvConfig{ServiceName: "site"}))
}

func TestStartAddsContextAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx := core.WithFeed(core.WithSessionID(context.Background(), "s-1"), "presse")
	_, span := Start(ctx, ComponentFeed, "feed.load", attribute.String("feed.kind", "press"))
	Fail(span, errors.New("offline"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	s := ended[0]
	assert.Equal(t, "feed.load", s.Name())
	assert.Equal(t, "github.com/bakkerme/feedboard/feed", s.InstrumentationScope().Name)
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Equal(t, "offline", s.Status().Description)

	attrs := attribute.NewSet(s.Attributes()...)
	for key, want := range map[attribute.Key]string{AttrSessionID: "s-1", AttrFeed: "presse", "feed.kind": "press"} {
		v, ok := attrs.Value(key)
		require.True(t, ok, string(key))
		assert.Equal(t, want, v.AsString())
	}
}

func TestContextAttributesEmpty(t *testing.T) {
	assert.Empty(t, ContextAttributes(context.Background()))
}
