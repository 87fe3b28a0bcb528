// Package ambient tracks the trace context active for a logical chain of
// execution.
//
// The store is the context.Context flowing through the call chain. Contexts
// are immutable values, so every goroutine sees only the attaches made on its
// own chain and nested attaches unwind in stack order. Attach and Detach make
// that stack explicit and checkable.
package ambient

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/trace"
)

// ErrDetachOrder is returned by Detach when the token does not belong to the
// most recent attach visible in the context.
var ErrDetachOrder = errors.New("ambient: detach out of order")

type frameKey struct{}

type frame struct {
	prev  context.Context
	depth int
}

// Token pairs a Detach with the Attach that produced it.
type Token struct {
	f *frame
}

// Current returns the span context active in ctx, local or remote.
func Current(ctx context.Context) (trace.SpanContext, bool) {
	sc := trace.SpanContextFromContext(ctx)
	return sc, sc.IsValid()
}

// Attach makes sc, as a remote parent, and bag the ambient values of the
// returned context. An invalid sc or an empty bag leaves the corresponding
// value of ctx in place.
func Attach(ctx context.Context, sc trace.SpanContext, bag baggage.Baggage) (context.Context, Token) {
	f := &frame{prev: ctx, depth: Depth(ctx) + 1}

	next := ctx
	if sc.IsValid() {
		next = trace.ContextWithRemoteSpanContext(next, sc)
	}
	if bag.Len() > 0 {
		next = baggage.ContextWithBaggage(next, bag)
	}
	return context.WithValue(next, frameKey{}, f), Token{f: f}
}

// Detach undoes the Attach that produced tok and returns the context that
// was active before it. The prior context is returned even on ErrDetachOrder.
func Detach(ctx context.Context, tok Token) (context.Context, error) {
	if tok.f == nil {
		return ctx, ErrDetachOrder
	}

	if top, _ := ctx.Value(frameKey{}).(*frame); top != tok.f {
		return tok.f.prev, ErrDetachOrder
	}
	return tok.f.prev, nil
}

// Depth returns the number of attaches visible in ctx.
func Depth(ctx context.Context) int {
	if f, ok := ctx.Value(frameKey{}).(*frame); ok {
		return f.depth
	}
	return 0
}
