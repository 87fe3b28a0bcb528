// Package carrier moves a trace context and its baggage through flat
// string-keyed carriers using the W3C traceparent, tracestate and baggage
// encodings.
package carrier

import (
	"context"

	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Carrier keys written and read by the codec.
const (
	TraceParentKey = "traceparent"
	TraceStateKey  = "tracestate"
	BaggageKey     = "baggage"
)

// Codec encodes and decodes trace context and baggage.
// The zero value is ready to use.
type Codec struct {
	traceContext propagation.TraceContext
	baggage      propagation.Baggage
}

// Decode returns the span context encoded in carrier. The boolean is false
// when traceparent is absent or malformed; callers treat that as "no parent".
func (c Codec) Decode(carrier propagation.TextMapCarrier) (trace.SpanContext, bool) {
	ctx := c.traceContext.Extract(context.Background(), carrier)
	sc := trace.SpanContextFromContext(ctx)
	return sc, sc.IsValid()
}

// DecodeBaggage returns the baggage encoded in carrier, empty when absent or unparsable.
func (c Codec) DecodeBaggage(carrier propagation.TextMapCarrier) baggage.Baggage {
	return baggage.FromContext(c.baggage.Extract(context.Background(), carrier))
}

// Extract applies the carrier's span context, as a remote parent, and its
// baggage to ctx. The boolean reports whether a span context was found.
func (c Codec) Extract(ctx context.Context, carrier propagation.TextMapCarrier) (context.Context, bool) {
	if bag := c.DecodeBaggage(carrier); bag.Len() > 0 {
		ctx = baggage.ContextWithBaggage(ctx, bag)
	}

	sc, ok := c.Decode(carrier)
	if !ok {
		return ctx, false
	}
	return trace.ContextWithRemoteSpanContext(ctx, sc), true
}

// Encode writes the span context and baggage of ctx into carrier, replacing
// whatever the carrier held under the same keys. The three keys are replaced
// together so a reader never mixes values from two traces. A ctx without a
// span context leaves the carrier untouched.
func (c Codec) Encode(ctx context.Context, carrier propagation.TextMapCarrier) {
	if !trace.SpanContextFromContext(ctx).IsValid() {
		return
	}

	carrier.Set(TraceStateKey, "")
	carrier.Set(BaggageKey, "")

	c.traceContext.Inject(ctx, carrier)
	c.baggage.Inject(ctx, carrier)
}
