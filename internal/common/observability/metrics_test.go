package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestStartSpan_UsesServiceTracer(t *testing.T) {
	provider := sdktrace.NewTracerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()

	obs := &Observability{tracer: provider.Tracer("adverse-media-test")}
	ctx, span := obs.StartSpan(context.Background(), "adverse-media-search")
	defer span.End()

	assert.True(t, span.SpanContext().IsValid())
	assert.Equal(t, span.SpanContext(), trace.SpanFromContext(ctx).SpanContext())
}

func TestStartSpan_FallsBackToGlobalTracer(t *testing.T) {
	obs := &Observability{}
	ctx, span := obs.StartSpan(context.Background(), "adverse-media-search")
	defer span.End()

	assert.NotNil(t, span)
	assert.NotNil(t, ctx)
}

func TestRecordJob_WithoutInstrumentsIsNoop(t *testing.T) {
	obs := &Observability{}
	assert.NotPanics(t, func() {
		obs.RecordJobProcessed(context.Background(), "adverse-media-search", "success")
		obs.RecordJobDuration(context.Background(), "adverse-media-search", time.Second, "success")
		obs.Shutdown()
	})
}
