package instrument

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Flag is a boolean that only the string "true", in any case, turns on.
// Anything else, including an unparsable value, reads as false.
type Flag bool

// Decode implements envconfig.Decoder.
func (f *Flag) Decode(value string) error {
	*f = Flag(strings.EqualFold(strings.TrimSpace(value), "true"))
	return nil
}

// Config controls tracing for instrumented functions.
//
// LoadConfig fills it from OTEL_TRACING, OTEL_SERVICE_NAME,
// OTEL_SERVICE_VERSION, OTEL_DEPLOYMENT_ENVIRONMENT,
// OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_PROTOCOL,
// OTEL_EXPORTER_OTLP_INSECURE and OTEL_TRACES_SAMPLER_ARG.
type Config struct {
	Enabled        Flag
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	Protocol       string
	Insecure       bool
	SampleRate     float64
}

// DefaultConfig returns a disabled configuration with the same defaults LoadConfig applies.
func DefaultConfig() Config {
	return Config{
		ServiceVersion: "unknown",
		Environment:    "development",
		Protocol:       "http/protobuf",
		SampleRate:     1.0,
	}
}

type (
	toggleVars struct {
		Enabled Flag `envconfig:"OTEL_TRACING"`
	}
	resourceVars struct {
		ServiceName    string `envconfig:"OTEL_SERVICE_NAME"`
		ServiceVersion string `envconfig:"OTEL_SERVICE_VERSION" default:"unknown"`
		Environment    string `envconfig:"OTEL_DEPLOYMENT_ENVIRONMENT" default:"development"`
	}
	endpointVars struct {
		Endpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
		Protocol string `envconfig:"OTEL_EXPORTER_OTLP_PROTOCOL" default:"http/protobuf"`
	}
	insecureVars struct {
		Insecure bool `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"false"`
	}
	samplerVars struct {
		SampleRate float64 `envconfig:"OTEL_TRACES_SAMPLER_ARG" default:"1.0"`
	}
)

// LoadConfig reads the tracing configuration from the environment.
//
// Enabled depends on OTEL_TRACING alone. Every other setting is read on its
// own, and a malformed value keeps its default. The returned Config is
// usable even when err reports such values.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	var (
		toggle   toggleVars
		res      resourceVars
		endpoint endpointVars
		insecure insecureVars
		sampler  samplerVars
		errs     []error
	)

	load := func(spec any, apply func()) {
		if err := envconfig.Process("", spec); err != nil {
			errs = append(errs, err)
			return
		}
		apply()
	}

	load(&toggle, func() { cfg.Enabled = toggle.Enabled })
	load(&res, func() {
		cfg.ServiceName = res.ServiceName
		cfg.ServiceVersion = res.ServiceVersion
		cfg.Environment = res.Environment
	})
	load(&endpoint, func() {
		cfg.Endpoint = endpoint.Endpoint
		cfg.Protocol = endpoint.Protocol
	})
	load(&insecure, func() { cfg.Insecure = insecure.Insecure })
	load(&sampler, func() { cfg.SampleRate = sampler.SampleRate })

	if err := errors.Join(errs...); err != nil {
		return cfg, fmt.Errorf("failed to load tracing config: %w", err)
	}
	return cfg, nil
}
