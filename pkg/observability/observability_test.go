package observability_test

import (
	"errors"
	"testing"

	"github.com/release-engineering/pubtools-go/pkg/observability"
	"github.com/stretchr/testify/assert"
)

func TestFields(t *testing.T) {
	err := errors.New("publish failed")

	tests := []struct {
		name      string
		field     observability.Field
		wantKey   string
		wantValue any
	}{
		{
			name:      "string",
			field:     observability.String("function_name", "pkg.Publish"),
			wantKey:   "function_name",
			wantValue: "pkg.Publish",
		},
		{
			name:      "error",
			field:     observability.Error(err),
			wantKey:   "error",
			wantValue: err,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKey, tt.field.Key)
			assert.Equal(t, tt.wantValue, tt.field.Value)
		})
	}
}

func TestNewSpanConfig(t *testing.T) {
	assert.Empty(t, observability.NewSpanConfig().Attributes)

	cfg := observability.NewSpanConfig(
		observability.WithAttributes(observability.String("function_name", "push")),
		observability.WithAttributes(observability.String("args", "a, b")),
	)
	assert.Equal(t, []observability.Field{
		observability.String("function_name", "push"),
		observability.String("args", "a, b"),
	}, cfg.Attributes)
}
