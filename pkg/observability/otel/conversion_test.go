package otel

import (
	"errors"
	"testing"

	"github.com/release-engineering/pubtools-go/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
)

type repoRef struct{ name string }

func (r repoRef) String() string { return "repo:" + r.name }

func TestToAttribute(t *testing.T) {
	tests := []struct {
		name  string
		field observability.Field
		want  attribute.KeyValue
	}{
		{
			name:  "string value",
			field: observability.String("function_name", "push"),
			want:  attribute.String("function_name", "push"),
		},
		{
			name:  "error value",
			field: observability.Error(errors.New("publish failed")),
			want:  attribute.String("error", "publish failed"),
		},
		{
			name:  "stringer value",
			field: observability.Field{Key: "repo", Value: repoRef{name: "rhel"}},
			want:  attribute.String("repo", "repo:rhel"),
		},
		{
			name:  "other values use their text form",
			field: observability.Field{Key: "attempt", Value: 3},
			want:  attribute.String("attempt", "3"),
		},
		{
			name:  "nil value",
			field: observability.Field{Key: "nil_value"},
			want:  attribute.String("nil_value", "<nil>"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toAttribute(tt.field))
		})
	}
}

func TestToAttributes_Empty(t *testing.T) {
	assert.Nil(t, toAttributes(nil))
	assert.Nil(t, toAttributes([]observability.Field{}))
}

func TestBaggageFields(t *testing.T) {
	t.Run("empty baggage", func(t *testing.T) {
		assert.Nil(t, BaggageFields(baggage.Baggage{}))
	})

	t.Run("members become string fields", func(t *testing.T) {
		m, err := baggage.NewMember("task_id", "1234")
		require.NoError(t, err)
		b, err := baggage.New(m)
		require.NoError(t, err)

		fields := BaggageFields(b)
		require.Len(t, fields, 1)
		assert.Equal(t, observability.String("task_id", "1234"), fields[0])
	})
}
