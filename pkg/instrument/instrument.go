package instrument

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"runtime"
	"slices"
	"strings"

	"github.com/release-engineering/pubtools-go/pkg/observability"
	obsotel "github.com/release-engineering/pubtools-go/pkg/observability/otel"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/propagation"
)

// Span attribute keys set on every instrumented call.
const (
	AttrFunctionName = "function_name"
	AttrArgs         = "args"
	AttrKwargs       = "kwargs"
)

// Kwargs is an argument recorded as named values in the kwargs attribute
// instead of in args.
type Kwargs map[string]any

// String renders the pairs sorted by key, "k=v" separated by ", ".
func (k Kwargs) String() string {
	pairs := make([]string, 0, len(k))
	for _, key := range slices.Sorted(maps.Keys(k)) {
		pairs = append(pairs, fmt.Sprintf("%s=%v", key, k[key]))
	}
	return strings.Join(pairs, ", ")
}

type funcOptions struct {
	spanName string
	carrier  propagation.TextMapCarrier
	withArgs bool
}

// FuncOption configures an instrumented function.
type FuncOption func(*funcOptions)

// WithSpanName overrides the span name, which defaults to the qualified function name.
func WithSpanName(name string) FuncOption {
	return func(o *funcOptions) {
		o.spanName = name
	}
}

// WithCarrier makes unparented calls take their parent from c instead of the environment.
func WithCarrier(c propagation.TextMapCarrier) FuncOption {
	return func(o *funcOptions) {
		o.carrier = c
	}
}

// WithArguments records the call arguments as the args and kwargs
// attributes. Arguments are formatted with %v, so keep it off for large or
// sensitive values.
func WithArguments() FuncOption {
	return func(o *funcOptions) {
		o.withArgs = true
	}
}

// Func instruments fn. A nil w means Default(). When tracing is disabled fn
// is returned as is.
func Func[R any](w *Wrapper, fn func(ctx context.Context) (R, error), opts ...FuncOption) func(ctx context.Context) (R, error) {
	if w = resolve(w); !w.enabled {
		return fn
	}

	c := newCall(w, fn, opts)
	return func(ctx context.Context) (res R, err error) {
		err = c.run(ctx, nil, func(ctx context.Context) error {
			res, err = fn(ctx)
			return err
		})
		return res, err
	}
}

// Func1 instruments a function of one argument.
func Func1[A, R any](w *Wrapper, fn func(ctx context.Context, a A) (R, error), opts ...FuncOption) func(ctx context.Context, a A) (R, error) {
	if w = resolve(w); !w.enabled {
		return fn
	}

	c := newCall(w, fn, opts)
	return func(ctx context.Context, a A) (res R, err error) {
		err = c.run(ctx, []any{a}, func(ctx context.Context) error {
			res, err = fn(ctx, a)
			return err
		})
		return res, err
	}
}

// Func2 instruments a function of two arguments.
func Func2[A, B, R any](w *Wrapper, fn func(ctx context.Context, a A, b B) (R, error), opts ...FuncOption) func(ctx context.Context, a A, b B) (R, error) {
	if w = resolve(w); !w.enabled {
		return fn
	}

	c := newCall(w, fn, opts)
	return func(ctx context.Context, a A, b B) (res R, err error) {
		err = c.run(ctx, []any{a, b}, func(ctx context.Context) error {
			res, err = fn(ctx, a, b)
			return err
		})
		return res, err
	}
}

// Action instruments a function returning only an error.
func Action(w *Wrapper, fn func(ctx context.Context) error, opts ...FuncOption) func(ctx context.Context) error {
	if w = resolve(w); !w.enabled {
		return fn
	}

	c := newCall(w, fn, opts)
	return func(ctx context.Context) error {
		return c.run(ctx, nil, fn)
	}
}

func resolve(w *Wrapper) *Wrapper {
	if w == nil {
		return Default()
	}
	return w
}

// PanicError records a panic that was not an error value.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

type call struct {
	w        *Wrapper
	spanName string
	funcName string
	carrier  propagation.TextMapCarrier
	withArgs bool
}

func newCall(w *Wrapper, fn any, opts []FuncOption) *call {
	o := &funcOptions{}
	for _, opt := range opts {
		opt(o)
	}

	c := &call{
		w:        w,
		funcName: funcName(fn),
		carrier:  o.carrier,
		withArgs: o.withArgs,
		spanName: o.spanName,
	}
	if c.spanName == "" {
		c.spanName = c.funcName
	}
	return c
}

// run executes invoke in a span. The parent is the trace context of ctx or,
// when there is none, the one found in the call's carrier. Errors and panics
// mark the span failed and reach the caller unchanged.
func (c *call) run(ctx context.Context, args []any, invoke func(ctx context.Context) error) (err error) {
	ctx, tok, adopted := c.w.adopt(ctx, c.carrier)

	ctx, span := c.w.tracer.Start(ctx, c.spanName, observability.WithAttributes(c.attributes(args)...))
	defer func() {
		r := recover()
		switch {
		case r != nil:
			fail(span, panicAsError(r))
		case err != nil:
			fail(span, err)
		}

		span.SetAttributes(obsotel.BaggageFields(baggage.FromContext(ctx))...)
		if adopted {
			c.w.release(ctx, tok)
		}
		span.End()

		if r != nil {
			panic(r)
		}
	}()

	c.w.publish(ctx)
	return invoke(ctx)
}

func (c *call) attributes(args []any) []observability.Field {
	fields := []observability.Field{observability.String(AttrFunctionName, c.funcName)}
	if !c.withArgs {
		return fields
	}

	positional := make([]string, 0, len(args))
	var named []string
	for _, a := range args {
		if kw, ok := a.(Kwargs); ok {
			if s := kw.String(); s != "" {
				named = append(named, s)
			}
			continue
		}
		positional = append(positional, fmt.Sprint(a))
	}

	return append(fields,
		observability.String(AttrArgs, strings.Join(positional, ", ")),
		observability.String(AttrKwargs, strings.Join(named, ", ")),
	)
}

func fail(span observability.Span, err error) {
	span.SetStatus(observability.StatusCodeError, err.Error())
	span.RecordError(err)
}

func panicAsError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &PanicError{Value: r}
}

func funcName(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "unknown"
	}
	if f := runtime.FuncForPC(v.Pointer()); f != nil {
		return f.Name()
	}
	return "unknown"
}
