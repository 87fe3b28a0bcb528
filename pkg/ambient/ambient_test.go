package ambient_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/release-engineering/pubtools-go/pkg/ambient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/trace"
)

func spanContext(t *testing.T, traceHex, spanHex string) trace.SpanContext {
	t.Helper()

	traceID, err := trace.TraceIDFromHex(traceHex)
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex(spanHex)
	require.NoError(t, err)

	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
}

func TestCurrent_Empty(t *testing.T) {
	sc, ok := ambient.Current(context.Background())

	assert.False(t, ok)
	assert.False(t, sc.IsValid())
	assert.Zero(t, ambient.Depth(context.Background()))
}

func TestAttachDetach_ThreeLevels(t *testing.T) {
	levels := []trace.SpanContext{
		spanContext(t, "11111111111111111111111111111111", "1111111111111111"),
		spanContext(t, "22222222222222222222222222222222", "2222222222222222"),
		spanContext(t, "33333333333333333333333333333333", "3333333333333333"),
	}

	root := context.Background()
	ctxs := []context.Context{root}
	tokens := make([]ambient.Token, 0, len(levels))

	for i, sc := range levels {
		ctx, tok := ambient.Attach(ctxs[i], sc, baggage.Baggage{})
		ctxs = append(ctxs, ctx)
		tokens = append(tokens, tok)

		cur, ok := ambient.Current(ctx)
		require.True(t, ok)
		assert.Equal(t, sc.TraceID(), cur.TraceID())
		assert.Equal(t, sc.SpanID(), cur.SpanID())
		assert.Equal(t, i+1, ambient.Depth(ctx))
	}

	ctx := ctxs[len(ctxs)-1]
	for i := len(tokens) - 1; i >= 0; i-- {
		prev, err := ambient.Detach(ctx, tokens[i])
		require.NoError(t, err)
		assert.Equal(t, ctxs[i], prev)
		assert.Equal(t, i, ambient.Depth(prev))

		cur, ok := ambient.Current(prev)
		if i == 0 {
			assert.False(t, ok)
		} else {
			assert.Equal(t, levels[i-1].SpanID(), cur.SpanID())
		}
		ctx = prev
	}
}

func TestDetach_OutOfOrder(t *testing.T) {
	outer, outerTok := ambient.Attach(context.Background(), spanContext(t, "11111111111111111111111111111111", "1111111111111111"), baggage.Baggage{})
	inner, _ := ambient.Attach(outer, spanContext(t, "22222222222222222222222222222222", "2222222222222222"), baggage.Baggage{})

	prev, err := ambient.Detach(inner, outerTok)

	assert.ErrorIs(t, err, ambient.ErrDetachOrder)
	assert.Equal(t, context.Background(), prev)
}

func TestDetach_ZeroToken(t *testing.T) {
	ctx := context.Background()

	prev, err := ambient.Detach(ctx, ambient.Token{})

	assert.True(t, errors.Is(err, ambient.ErrDetachOrder))
	assert.Equal(t, ctx, prev)
}

func TestAttach_Baggage(t *testing.T) {
	m, err := baggage.NewMemberRaw("task", "push")
	require.NoError(t, err)
	bag, err := baggage.New(m)
	require.NoError(t, err)

	ctx, tok := ambient.Attach(context.Background(), trace.SpanContext{}, bag)

	assert.Equal(t, "push", baggage.FromContext(ctx).Member("task").Value())
	_, ok := ambient.Current(ctx)
	assert.False(t, ok, "invalid span context must not become ambient")
	assert.Equal(t, 1, ambient.Depth(ctx))

	prev, err := ambient.Detach(ctx, tok)
	require.NoError(t, err)
	assert.Zero(t, baggage.FromContext(prev).Len())
}

func TestAttach_ConfinedPerChain(t *testing.T) {
	const workers = 16
	base := context.Background()
	sc := spanContext(t, "0123456789abcdef0123456789abcdef", "0000000000000001")

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := base
			var toks []ambient.Token
			for range i%4 + 1 {
				var tok ambient.Token
				ctx, tok = ambient.Attach(ctx, sc, baggage.Baggage{})
				toks = append(toks, tok)
			}
			if ambient.Depth(ctx) != i%4+1 {
				errs <- errors.New("depth leaked across goroutines")
				return
			}
			for j := len(toks) - 1; j >= 0; j-- {
				var err error
				if ctx, err = ambient.Detach(ctx, toks[j]); err != nil {
					errs <- err
					return
				}
			}
			if ctx != base {
				errs <- errors.New("detach did not restore the base context")
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}
