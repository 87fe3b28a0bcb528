package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/release-engineering/pubtools-go/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(level zapcore.Level) (observability.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewZap(zap.New(core)), logs
}

func TestLogger_Levels(t *testing.T) {
	l, logs := newObserved(zapcore.DebugLevel)
	ctx := context.Background()

	l.Debug(ctx, "debug")
	l.Info(ctx, "info")
	l.Warn(ctx, "warn")
	l.Error(ctx, "error")

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	l, logs := newObserved(zapcore.WarnLevel)

	l.Info(context.Background(), "dropped")
	l.Warn(context.Background(), "kept")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}

func TestLogger_TraceFields(t *testing.T) {
	l, logs := newObserved(zapcore.InfoLevel)

	traceID, err := trace.TraceIDFromHex("cefb2b8db35d5f3c0dfdf79d5aab1451")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("1f2bb7927f140744")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	l.Info(ctx, "with trace")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "cefb2b8db35d5f3c0dfdf79d5aab1451", fields["trace_id"])
	assert.Equal(t, "1f2bb7927f140744", fields["span_id"])
}

func TestLogger_Fields(t *testing.T) {
	l, logs := newObserved(zapcore.InfoLevel)

	l.Warn(context.Background(), "hook failed",
		observability.String("hook", "task_stop"),
		observability.Error(errors.New("boom")),
	)

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "task_stop", fields["hook"])
	assert.Equal(t, "boom", fields["error"])
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("PUBTOOLS_LOG_LEVEL", "debug")
	t.Setenv("PUBTOOLS_LOG_DEVELOPMENT", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Level)
	assert.True(t, cfg.Development)
	assert.Equal(t, []string{"stderr"}, cfg.OutputPaths)
}

func TestNewDefault_NeverNil(t *testing.T) {
	t.Setenv("PUBTOOLS_LOG_LEVEL", "not-a-level")
	assert.NotNil(t, NewDefault())
}
