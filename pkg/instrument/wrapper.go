// Package instrument wraps functions in tracing spans and carries the trace
// across goroutines and into subprocesses.
//
// Tracing is switched on by OTEL_TRACING=true. When it is off, or when the
// tracer provider cannot be built, wrapping returns the function unchanged
// and nothing is recorded.
package instrument

import (
	"context"
	"io"
	"sync"

	"github.com/release-engineering/pubtools-go/pkg/carrier"
	"github.com/release-engineering/pubtools-go/pkg/hooks"
	"github.com/release-engineering/pubtools-go/pkg/observability"
	"github.com/release-engineering/pubtools-go/pkg/observability/logging"
	"github.com/release-engineering/pubtools-go/pkg/observability/noop"
	obsotel "github.com/release-engineering/pubtools-go/pkg/observability/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Wrapper owns the tracer provider used by instrumented functions.
type Wrapper struct {
	enabled  bool
	provider *obsotel.Provider
	tracer   observability.Tracer
	logger   observability.Logger
	env      propagation.TextMapCarrier
	codec    carrier.Codec
}

type options struct {
	hooks          *hooks.Manager
	env            propagation.TextMapCarrier
	logger         observability.Logger
	exporter       sdktrace.SpanExporter
	consoleWriter  io.Writer
	registerGlobal bool
}

// Option configures a Wrapper.
type Option func(*options)

// WithHooks sets the hook manager asked for an exporter. Defaults to hooks.Default().
func WithHooks(m *hooks.Manager) Option {
	return func(o *options) {
		o.hooks = m
	}
}

// WithEnvironment replaces the process environment as the carrier the
// primary execution publishes to and unparented calls read from.
func WithEnvironment(env propagation.TextMapCarrier) Option {
	return func(o *options) {
		o.env = env
	}
}

// WithLogger sets the logger. Defaults to a zap logger configured from the environment.
func WithLogger(l observability.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithExporter sets the span exporter, bypassing the otel_exporter hook.
func WithExporter(e sdktrace.SpanExporter) Option {
	return func(o *options) {
		o.exporter = e
	}
}

// WithConsoleWriter sets where the console exporter writes when no other exporter applies.
func WithConsoleWriter(w io.Writer) Option {
	return func(o *options) {
		o.consoleWriter = w
	}
}

// WithGlobalRegistration installs the tracer provider and W3C propagators as the otel globals.
func WithGlobalRegistration() Option {
	return func(o *options) {
		o.registerGlobal = true
	}
}

// New builds a Wrapper from cfg. It never fails: when tracing is disabled or
// the provider cannot be built, the Wrapper passes calls through.
//
// The exporter is, in order: WithExporter, the first otel_exporter hook
// answer, OTLP when cfg.Endpoint is set, and the console.
func New(ctx context.Context, cfg Config, opts ...Option) *Wrapper {
	o := &options{
		hooks: hooks.Default(),
		env:   carrier.Env{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewDefault()
	}

	w := &Wrapper{
		tracer: noop.NewTracer(),
		logger: o.logger,
		env:    o.env,
	}
	if !cfg.Enabled {
		return w
	}

	o.logger.Info(ctx, "creating tracing wrapper", observability.String("service", cfg.ServiceName))

	exporter := o.exporter
	if exporter == nil && o.hooks != nil {
		var err error
		if exporter, err = o.hooks.Exporter(ctx); err != nil {
			o.logger.Warn(ctx, "otel_exporter hook failed, using the default exporter", observability.Error(err))
			exporter = nil
		}
	}

	pcfg := obsotel.DefaultConfig(cfg.ServiceName)
	pcfg.ServiceVersion = cfg.ServiceVersion
	pcfg.Environment = cfg.Environment
	pcfg.OTLPEndpoint = cfg.Endpoint
	pcfg.OTLPProtocol = obsotel.OTLPProtocol(cfg.Protocol)
	pcfg.Insecure = cfg.Insecure
	pcfg.TraceSampleRate = cfg.SampleRate
	pcfg.Exporter = exporter
	pcfg.ConsoleWriter = o.consoleWriter
	pcfg.RegisterGlobal = o.registerGlobal
	pcfg.Logger = o.logger

	provider, err := obsotel.NewProvider(ctx, pcfg)
	if err != nil {
		o.logger.Error(ctx, "tracing is enabled but the tracer provider is unavailable, instrumentation is disabled",
			observability.Error(err),
		)
		return w
	}

	w.enabled = true
	w.provider = provider
	w.tracer = provider.Tracer()
	return w
}

var (
	defaultOnce    sync.Once
	defaultWrapper *Wrapper
)

// Default returns the process-wide Wrapper, built on first use from the
// environment and the default hook manager. Later changes to the
// environment do not affect it.
func Default() *Wrapper {
	defaultOnce.Do(func() {
		ctx := context.Background()
		logger := logging.NewDefault()

		cfg, err := LoadConfig()
		if err != nil {
			logger.Warn(ctx, "malformed tracing settings replaced by defaults", observability.Error(err))
		}

		defaultWrapper = New(ctx, cfg, WithLogger(logger), WithGlobalRegistration())
	})
	return defaultWrapper
}

// Enabled reports whether instrumented functions record spans.
func (w *Wrapper) Enabled() bool {
	return w.enabled
}

// Tracer returns the tracer behind instrumented functions, a no-op tracer when disabled.
func (w *Wrapper) Tracer() observability.Tracer {
	return w.tracer
}

// Provider returns the tracer provider, nil when disabled.
func (w *Wrapper) Provider() *obsotel.Provider {
	return w.provider
}

// ForceFlush exports every finished span still queued. It does nothing,
// and logs nothing, when tracing is disabled.
func (w *Wrapper) ForceFlush(ctx context.Context) error {
	if !w.enabled {
		return nil
	}

	w.logger.Info(ctx, "flush trace data into OTEL collectors")
	return w.provider.ForceFlush(ctx)
}

// Shutdown flushes and stops the span pipeline. Wrapped functions keep
// working afterwards but their spans are dropped.
func (w *Wrapper) Shutdown(ctx context.Context) error {
	if !w.enabled {
		return nil
	}
	return w.provider.Shutdown(ctx)
}
