package infrastructure

import (
	"go.opentelemetry.io/otel/attribute"
)

func attrEventType(eventType string) attribute.KeyValue {
	return attribute.String("event_type", eventType)
}

func attrReason(reason string) attribute.KeyValue {
	return attribute.String("reason", reason)
}
