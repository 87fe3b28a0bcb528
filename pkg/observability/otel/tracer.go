package otel

import (
	"context"

	"github.com/release-engineering/pubtools-go/pkg/observability"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// sdkTracer adapts an SDK tracer to observability.Tracer.
type sdkTracer struct {
	tracer oteltrace.Tracer
}

func (t sdkTracer) Start(ctx context.Context, spanName string, opts ...observability.SpanOption) (context.Context, observability.Span) {
	cfg := observability.NewSpanConfig(opts...)

	var start []oteltrace.SpanStartOption
	if attrs := toAttributes(cfg.Attributes); attrs != nil {
		start = append(start, oteltrace.WithAttributes(attrs...))
	}

	ctx, span := t.tracer.Start(ctx, spanName, start...)
	return ctx, sdkSpan{span: span}
}

type sdkSpan struct {
	span oteltrace.Span
}

func (s sdkSpan) End() {
	s.span.End()
}

func (s sdkSpan) SetAttributes(fields ...observability.Field) {
	if attrs := toAttributes(fields); attrs != nil {
		s.span.SetAttributes(attrs...)
	}
}

func (s sdkSpan) SetStatus(code observability.StatusCode, description string) {
	switch code {
	case observability.StatusCodeOK:
		s.span.SetStatus(codes.Ok, description)
	case observability.StatusCodeError:
		s.span.SetStatus(codes.Error, description)
	default:
		s.span.SetStatus(codes.Unset, description)
	}
}

// RecordError adds the "exception" event carrying exception.type and
// exception.message.
func (s sdkSpan) RecordError(err error, fields ...observability.Field) {
	var opts []oteltrace.EventOption
	if attrs := toAttributes(fields); attrs != nil {
		opts = append(opts, oteltrace.WithAttributes(attrs...))
	}
	s.span.RecordError(err, opts...)
}

func (s sdkSpan) Context() observability.SpanContext {
	return spanContext(s.span.SpanContext())
}

type spanContext oteltrace.SpanContext

func (c spanContext) TraceID() string {
	return oteltrace.SpanContext(c).TraceID().String()
}

func (c spanContext) SpanID() string {
	return oteltrace.SpanContext(c).SpanID().String()
}

func (c spanContext) IsSampled() bool {
	return oteltrace.SpanContext(c).IsSampled()
}
