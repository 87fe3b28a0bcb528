package otel

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/release-engineering/pubtools-go/pkg/observability"
	"github.com/release-engineering/pubtools-go/pkg/observability/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc/credentials"
)

// OTLPProtocol defines the protocol to use for OTLP export.
type OTLPProtocol string

const (
	// ProtocolHTTP uses HTTP/protobuf protocol for OTLP export (default: port 4318).
	ProtocolHTTP OTLPProtocol = "http"
	// ProtocolGRPC uses gRPC protocol for OTLP export (default: port 4317).
	ProtocolGRPC OTLPProtocol = "grpc"
)

const (
	defaultServiceName        = "unknown_service"
	defaultBatchTimeout       = 5 * time.Second
	defaultMaxExportBatchSize = 512
	tracesPath                = "/v1/traces"
)

// Config holds the configuration for the OpenTelemetry tracer provider.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	// OTLPEndpoint is either "host:port" or a URL. When empty and no Exporter
	// is given, finished spans are written to ConsoleWriter.
	OTLPEndpoint string
	OTLPProtocol OTLPProtocol

	Insecure  bool        // Allow insecure connections (only for non-production environments)
	TLSConfig *tls.Config // Custom TLS configuration (optional, uses system defaults if nil)

	TraceSampleRate float64 // 0.0 to 1.0

	BatchTimeout       time.Duration
	MaxExportBatchSize int

	// Exporter, when set, replaces OTLP and console export entirely.
	Exporter sdktrace.SpanExporter

	// ConsoleWriter receives spans from the console fallback exporter. Defaults to os.Stdout.
	ConsoleWriter io.Writer

	// RegisterGlobal installs the provider and the W3C propagators as the otel globals.
	RegisterGlobal bool

	Logger observability.Logger

	ResourceAttributes map[string]string
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName:        serviceName,
		ServiceVersion:     "unknown",
		Environment:        "development",
		OTLPProtocol:       ProtocolHTTP,
		TraceSampleRate:    1.0,
		BatchTimeout:       defaultBatchTimeout,
		MaxExportBatchSize: defaultMaxExportBatchSize,
	}
}

// normalizeProtocol maps the OTEL_EXPORTER_OTLP_PROTOCOL spellings onto OTLPProtocol.
func normalizeProtocol(protocol string) OTLPProtocol {
	switch strings.ToLower(protocol) {
	case "grpc":
		return ProtocolGRPC
	default:
		return ProtocolHTTP
	}
}

// Provider owns the SDK span pipeline behind instrumented functions.
type Provider struct {
	config         *Config
	tracerProvider *sdktrace.TracerProvider
	tracer         sdkTracer
}

// validateSecurityConfig validates the security configuration.
func validateSecurityConfig(config *Config) error {
	if config.Insecure {
		env := strings.ToLower(config.Environment)
		if env == "production" || env == "prod" {
			return errors.New("insecure connections are not allowed in production environment")
		}
	}

	if config.TLSConfig != nil && config.TLSConfig.MinVersion > 0 && config.TLSConfig.MinVersion < tls.VersionTLS12 {
		return errors.New("minimum TLS version must be 1.2 or higher for security compliance")
	}

	return nil
}

// NewProvider creates the SDK tracer provider with a batching span processor.
func NewProvider(ctx context.Context, config *Config) (*Provider, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}

	if err := validateSecurityConfig(config); err != nil {
		return nil, err
	}

	config.OTLPProtocol = normalizeProtocol(string(config.OTLPProtocol))
	if config.ServiceName == "" {
		config.ServiceName = defaultServiceName
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.NewDefault()
	}

	if config.Insecure {
		logger.Warn(ctx, "using insecure OTLP connection, this should only be used in development/testing",
			observability.String("endpoint", config.OTLPEndpoint),
			observability.String("environment", config.Environment),
		)
	}

	provider := &Provider{config: config}

	res, err := provider.createResource(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := provider.initTracerProvider(ctx, res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracer provider: %w", err)
	}

	provider.tracer = sdkTracer{tracer: provider.tracerProvider.Tracer(config.ServiceName)}
	return provider, nil
}

// createResource describes this process: service name, version, environment
// and a per-process instance id.
func (p *Provider) createResource(ctx context.Context) (*resource.Resource, error) {
	attrs := []resource.Option{
		resource.WithAttributes(
			semconv.ServiceName(p.config.ServiceName),
			semconv.ServiceVersion(p.config.ServiceVersion),
			semconv.ServiceInstanceID(uuid.NewString()),
			semconv.DeploymentEnvironment(p.config.Environment),
		),
	}

	if len(p.config.ResourceAttributes) > 0 {
		customAttrs := make([]attribute.KeyValue, 0, len(p.config.ResourceAttributes))
		for k, v := range p.config.ResourceAttributes {
			customAttrs = append(customAttrs, attribute.String(k, v))
		}
		attrs = append(attrs, resource.WithAttributes(customAttrs...))
	}

	return resource.New(ctx, attrs...)
}

func (p *Provider) initTracerProvider(ctx context.Context, res *resource.Resource) error {
	exporter, err := p.createTraceExporter(ctx)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	batchOpts := []sdktrace.BatchSpanProcessorOption{}
	if p.config.BatchTimeout > 0 {
		batchOpts = append(batchOpts, sdktrace.WithBatchTimeout(p.config.BatchTimeout))
	}
	if p.config.MaxExportBatchSize > 0 {
		batchOpts = append(batchOpts, sdktrace.WithMaxExportBatchSize(p.config.MaxExportBatchSize))
	}

	p.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(p.createTraceSampler()),
		sdktrace.WithBatcher(exporter, batchOpts...),
	)

	if p.config.RegisterGlobal {
		otel.SetTracerProvider(p.tracerProvider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}

	return nil
}

// createTraceExporter picks, in order: the configured exporter, OTLP when an
// endpoint is set, and finally the console exporter.
func (p *Provider) createTraceExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	if p.config.Exporter != nil {
		return p.config.Exporter, nil
	}

	if p.config.OTLPEndpoint == "" {
		w := p.config.ConsoleWriter
		if w == nil {
			w = os.Stdout
		}
		return stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	}

	if p.config.OTLPProtocol == ProtocolGRPC {
		return otlptracegrpc.New(ctx, p.grpcOptions()...)
	}
	return otlptracehttp.New(ctx, p.httpOptions()...)
}

func (p *Provider) httpOptions() []otlptracehttp.Option {
	var opts []otlptracehttp.Option
	if hasScheme(p.config.OTLPEndpoint) {
		opts = append(opts, otlptracehttp.WithEndpointURL(strings.TrimSuffix(p.config.OTLPEndpoint, "/")+tracesPath))
	} else {
		opts = append(opts, otlptracehttp.WithEndpoint(p.config.OTLPEndpoint))
	}

	if p.config.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	} else if p.config.TLSConfig != nil {
		opts = append(opts, otlptracehttp.WithTLSClientConfig(p.config.TLSConfig))
	}
	return opts
}

func (p *Provider) grpcOptions() []otlptracegrpc.Option {
	var opts []otlptracegrpc.Option
	if hasScheme(p.config.OTLPEndpoint) {
		opts = append(opts, otlptracegrpc.WithEndpointURL(p.config.OTLPEndpoint))
	} else {
		opts = append(opts, otlptracegrpc.WithEndpoint(p.config.OTLPEndpoint))
	}

	if p.config.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else if p.config.TLSConfig != nil {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(p.config.TLSConfig)))
	}
	return opts
}

func hasScheme(endpoint string) bool {
	return strings.Contains(endpoint, "://")
}

func (p *Provider) createTraceSampler() sdktrace.Sampler {
	if p.config.TraceSampleRate >= 1.0 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}

	if p.config.TraceSampleRate <= 0.0 {
		return sdktrace.NeverSample()
	}

	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(p.config.TraceSampleRate))
}

// Tracer returns the OpenTelemetry-backed tracer.
func (p *Provider) Tracer() observability.Tracer {
	return p.tracer
}

// TracerProvider exposes the SDK provider, mostly for tests and bridges.
func (p *Provider) TracerProvider() *sdktrace.TracerProvider {
	return p.tracerProvider
}

// ForceFlush exports every span that has ended but is still queued in the batcher.
func (p *Provider) ForceFlush(ctx context.Context) error {
	return p.tracerProvider.ForceFlush(ctx)
}

// Shutdown flushes and stops the span pipeline.
func (p *Provider) Shutdown(ctx context.Context) error {
	if err := p.tracerProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("tracer provider shutdown: %w", err)
	}
	return nil
}
