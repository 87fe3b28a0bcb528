// Package observability is the narrow tracing and logging surface that
// instrumented functions and the hook machinery are written against.
//
// The otel subpackage backs it with the OpenTelemetry SDK, noop backs it when
// tracing is off, and logging routes log lines through zap.
package observability

// Field is a key-value pair attached to a span or a log line.
type Field struct {
	Key   string
	Value any
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Error creates a field keyed "error".
func Error(err error) Field {
	return Field{Key: "error", Value: err}
}

// SpanContext exposes the identifiers of a span in their W3C hex form.
type SpanContext interface {
	TraceID() string
	SpanID() string
	IsSampled() bool
}

// Span is the span of one instrumented call.
type Span interface {
	// End finishes the span. Nothing may be recorded on it afterwards.
	End()

	SetAttributes(fields ...Field)
	SetStatus(code StatusCode, description string)

	// RecordError adds an "exception" event for err.
	RecordError(err error, fields ...Field)

	Context() SpanContext
}

// StatusCode is the outcome recorded on a span.
type StatusCode int

const (
	StatusCodeUnset StatusCode = iota
	StatusCodeOK
	StatusCodeError
)

// SpanConfig collects what is known about a span before it starts.
type SpanConfig struct {
	Attributes []Field
}

// SpanOption configures span creation.
type SpanOption func(*SpanConfig)

// WithAttributes sets attributes present from the start of the span, so that
// samplers and processors see them.
func WithAttributes(fields ...Field) SpanOption {
	return func(c *SpanConfig) {
		c.Attributes = append(c.Attributes, fields...)
	}
}

// NewSpanConfig applies opts in order. Tracer implementations call it.
func NewSpanConfig(opts ...SpanOption) SpanConfig {
	var cfg SpanConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
