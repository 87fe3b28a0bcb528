package observability

import "context"

// Tracer starts spans as children of whatever span context ctx carries,
// local or remote. A ctx without one produces a root span.
type Tracer interface {
	// Start returns ctx with the new span installed. The caller must End it.
	Start(ctx context.Context, spanName string, opts ...SpanOption) (context.Context, Span)
}
