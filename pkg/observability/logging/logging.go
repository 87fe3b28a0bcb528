// Package logging implements observability.Logger on top of zap.
package logging

import (
	"context"
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/release-engineering/pubtools-go/pkg/observability"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config defines logger configuration.
type Config struct {
	Level       string   `envconfig:"PUBTOOLS_LOG_LEVEL" default:"info"`
	Development bool     `envconfig:"PUBTOOLS_LOG_DEVELOPMENT" default:"false"`
	OutputPaths []string `envconfig:"PUBTOOLS_LOG_OUTPUT" default:"stderr"`
}

// DefaultConfig returns the logger configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Level:       "info",
		OutputPaths: []string{"stderr"},
	}
}

// LoadConfig reads the logger configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load logging config: %w", err)
	}
	return cfg, nil
}

type logger struct {
	zap *zap.Logger
}

// New creates a zap-backed logger with the provided configuration.
func New(cfg Config) (observability.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       cfg.Development,
		Encoding:          encodingFormat(cfg.Development),
		EncoderConfig:     encoderConfig(cfg.Development),
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: !cfg.Development,
	}

	zl, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &logger{zap: zl.Named("pubtools")}, nil
}

// NewDefault builds a logger from the environment, falling back to a no-op logger.
func NewDefault() observability.Logger {
	cfg, err := LoadConfig()
	if err != nil {
		cfg = DefaultConfig()
	}

	l, err := New(cfg)
	if err != nil {
		return NewZap(zap.NewNop())
	}
	return l
}

// NewZap wraps an existing zap logger.
func NewZap(zl *zap.Logger) observability.Logger {
	return &logger{zap: zl}
}

func (l *logger) Debug(ctx context.Context, msg string, fields ...observability.Field) {
	l.log(ctx, zapcore.DebugLevel, msg, fields)
}

func (l *logger) Info(ctx context.Context, msg string, fields ...observability.Field) {
	l.log(ctx, zapcore.InfoLevel, msg, fields)
}

func (l *logger) Warn(ctx context.Context, msg string, fields ...observability.Field) {
	l.log(ctx, zapcore.WarnLevel, msg, fields)
}

func (l *logger) Error(ctx context.Context, msg string, fields ...observability.Field) {
	l.log(ctx, zapcore.ErrorLevel, msg, fields)
}

// log adds trace_id and span_id from ctx when a valid span context is present.
func (l *logger) log(ctx context.Context, level zapcore.Level, msg string, fields []observability.Field) {
	ce := l.zap.Check(level, msg)
	if ce == nil {
		return
	}

	zfields := convertFields(fields)
	if ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			zfields = append(zfields,
				zap.String("trace_id", sc.TraceID().String()),
				zap.String("span_id", sc.SpanID().String()),
			)
		}
	}

	ce.Write(zfields...)
}

func convertFields(fields []observability.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	zfields := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			zfields = append(zfields, zap.NamedError(f.Key, err))
			continue
		}
		zfields = append(zfields, zap.Any(f.Key, f.Value))
	}
	return zfields
}

func parseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}

func encodingFormat(development bool) string {
	if development {
		return "console"
	}
	return "json"
}

func encoderConfig(development bool) zapcore.EncoderConfig {
	if development {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg
	}

	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}
