// AngelaMos | 2026
// telemetry_test.go

package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpan(t *testing.T, fn func(ctx context.Context)) sdktrace.ReadOnlySpan {
	t.Helper()

	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	fn(ctx)
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	return ended[0]
}

func attrMap(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTagSpan(t *testing.T) {
	reviewer := Actor{ID: "staff-1", UserType: UserTypeStaff}

	span := recordSpan(t, func(ctx context.Context) {
		TagSpan(ctx, reviewer, attribute.String("permitdesk.record.id", "app-9"))
	})

	attrs := attrMap(span)
	assert.Equal(t, "staff-1", attrs["permitdesk.actor.id"].AsString())
	assert.Equal(t, UserTypeStaff, attrs["permitdesk.actor.type"].AsString())
	assert.True(t, attrs["permitdesk.actor.staff"].AsBool())
	assert.Equal(t, "app-9", attrs["permitdesk.record.id"].AsString())
}

func TestTagSpan_NoActiveSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		TagSpan(context.Background(), Actor{ID: "user-1"})
	})
}

func TestSetSpanError(t *testing.T) {
	span := recordSpan(t, func(ctx context.Context) {
		SetSpanError(ctx, errors.New("link drafts: store down"))
	})

	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Equal(t, "link drafts: store down", span.Status().Description)
	require.Len(t, span.Events(), 1)
	assert.Equal(t, "exception", span.Events()[0].Name)
}
