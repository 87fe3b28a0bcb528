package noop_test

import (
	"context"
	"errors"
	"testing"

	"github.com/release-engineering/pubtools-go/pkg/observability"
	"github.com/release-engineering/pubtools-go/pkg/observability/noop"
	"github.com/stretchr/testify/assert"
)

type ctxKey struct{}

func TestTracer(t *testing.T) {
	ctx := context.WithValue(context.Background(), ctxKey{}, "task")

	got, span := noop.NewTracer().Start(ctx, "push",
		observability.WithAttributes(observability.String("function_name", "push")))

	assert.Equal(t, ctx, got)
	assert.NotPanics(t, func() {
		span.SetAttributes(observability.String("task_id", "1"))
		span.RecordError(errors.New("publish failed"))
		span.SetStatus(observability.StatusCodeError, "publish failed")
		span.End()
	})

	sc := span.Context()
	assert.Empty(t, sc.TraceID())
	assert.Empty(t, sc.SpanID())
	assert.False(t, sc.IsSampled())
}
