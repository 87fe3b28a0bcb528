package instrument_test

import (
	"context"
	"testing"

	"github.com/release-engineering/pubtools-go/pkg/hooks"
	"github.com/release-engineering/pubtools-go/pkg/instrument"
	"github.com/release-engineering/pubtools-go/pkg/observability/fake"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const (
	traceIDHex  = "4bf92f3577b34da6a3ce929d0e0e4736"
	spanIDHex   = "00f067aa0ba902b7"
	traceParent = "00-" + traceIDHex + "-" + spanIDHex + "-01"
)

type harness struct {
	w        *instrument.Wrapper
	exporter *tracetest.InMemoryExporter
	env      propagation.MapCarrier
	logger   *fake.Logger
}

func enabledConfig() instrument.Config {
	cfg := instrument.DefaultConfig()
	cfg.Enabled = true
	cfg.ServiceName = "pubtools-test"
	return cfg
}

func newHarness(t *testing.T, opts ...instrument.Option) *harness {
	t.Helper()

	h := &harness{
		exporter: tracetest.NewInMemoryExporter(),
		env:      propagation.MapCarrier{},
		logger:   fake.NewLogger(),
	}

	base := []instrument.Option{
		instrument.WithExporter(h.exporter),
		instrument.WithEnvironment(h.env),
		instrument.WithLogger(h.logger),
		instrument.WithHooks(hooks.NewManager()),
	}
	h.w = instrument.New(context.Background(), enabledConfig(), append(base, opts...)...)
	require.True(t, h.w.Enabled())

	t.Cleanup(func() {
		_ = h.w.Shutdown(context.Background())
	})
	return h
}

// spans flushes the pipeline and returns the finished spans in end order.
func (h *harness) spans(t *testing.T) tracetest.SpanStubs {
	t.Helper()
	require.NoError(t, h.w.ForceFlush(context.Background()))
	return h.exporter.GetSpans()
}

func (h *harness) span(t *testing.T, name string) tracetest.SpanStub {
	t.Helper()
	for _, s := range h.spans(t) {
		if s.Name == name {
			return s
		}
	}
	require.Failf(t, "span not found", "no span named %q", name)
	return tracetest.SpanStub{}
}

func attr(s tracetest.SpanStub, key string) (string, bool) {
	for _, kv := range s.Attributes {
		if kv.Key == attribute.Key(key) {
			return kv.Value.Emit(), true
		}
	}
	return "", false
}

func eventAttr(e []attribute.KeyValue, key string) string {
	for _, kv := range e {
		if kv.Key == attribute.Key(key) {
			return kv.Value.Emit()
		}
	}
	return ""
}
