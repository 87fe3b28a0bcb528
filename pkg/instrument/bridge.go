package instrument

import (
	"context"

	"github.com/release-engineering/pubtools-go/pkg/ambient"
	"github.com/release-engineering/pubtools-go/pkg/observability"
	"go.opentelemetry.io/otel/propagation"
)

// adopt attaches the trace context found in src when ctx has none yet.
// A nil or empty src reads the environment sink instead. ok is false when
// nothing was attached.
func (w *Wrapper) adopt(ctx context.Context, src propagation.TextMapCarrier) (context.Context, ambient.Token, bool) {
	if _, ok := ambient.Current(ctx); ok {
		return ctx, ambient.Token{}, false
	}

	if src == nil || len(src.Keys()) == 0 {
		src = w.env
	}

	sc, found := w.codec.Decode(src)
	bag := w.codec.DecodeBaggage(src)
	if !found && bag.Len() == 0 {
		return ctx, ambient.Token{}, false
	}

	ctx, tok := ambient.Attach(ctx, sc, bag)
	return ctx, tok, true
}

// publish writes the trace context of ctx into the environment sink so that
// subprocesses started from here on join the trace. Only the primary
// execution publishes; workers would overwrite each other.
func (w *Wrapper) publish(ctx context.Context) {
	if !ambient.IsPrimary(ctx) {
		return
	}
	w.codec.Encode(ctx, w.env)
}

// release undoes adopt.
func (w *Wrapper) release(ctx context.Context, tok ambient.Token) {
	if _, err := ambient.Detach(ctx, tok); err != nil {
		w.logger.Warn(ctx, "trace context released out of order", observability.Error(err))
	}
}
