// Package noop provides the tracer instrumented functions hold while tracing
// is off. Its spans record nothing and Start hands ctx back untouched.
package noop

import (
	"context"

	"github.com/release-engineering/pubtools-go/pkg/observability"
)

// NewTracer returns a tracer that never records.
func NewTracer() observability.Tracer {
	return tracer{}
}

type tracer struct{}

func (tracer) Start(ctx context.Context, _ string, _ ...observability.SpanOption) (context.Context, observability.Span) {
	return ctx, span{}
}

type span struct{}

func (span) End()                                       {}
func (span) SetAttributes(...observability.Field)       {}
func (span) SetStatus(observability.StatusCode, string) {}
func (span) RecordError(error, ...observability.Field)  {}
func (span) Context() observability.SpanContext         { return spanContext{} }

// spanContext is all zero: empty ids, not sampled.
type spanContext struct{}

func (spanContext) TraceID() string { return "" }
func (spanContext) SpanID() string  { return "" }
func (spanContext) IsSampled() bool { return false }
