package otel

import (
	"fmt"

	"github.com/release-engineering/pubtools-go/pkg/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
)

// toAttribute renders a field as a span attribute. Strings stay strings,
// errors and other values are rendered with their text form.
func toAttribute(field observability.Field) attribute.KeyValue {
	switch v := field.Value.(type) {
	case string:
		return attribute.String(field.Key, v)
	case error:
		return attribute.String(field.Key, v.Error())
	default:
		return attribute.String(field.Key, fmt.Sprint(v))
	}
}

// toAttributes returns nil for no fields.
func toAttributes(fields []observability.Field) []attribute.KeyValue {
	if len(fields) == 0 {
		return nil
	}

	attrs := make([]attribute.KeyValue, len(fields))
	for i, field := range fields {
		attrs[i] = toAttribute(field)
	}
	return attrs
}

// BaggageFields flattens the members of b into string fields keyed by member name.
func BaggageFields(b baggage.Baggage) []observability.Field {
	members := b.Members()
	if len(members) == 0 {
		return nil
	}

	fields := make([]observability.Field, 0, len(members))
	for _, m := range members {
		fields = append(fields, observability.String(m.Key(), m.Value()))
	}
	return fields
}
