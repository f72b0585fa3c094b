// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Span attribute keys.
const (
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"

	ProducerIDKey     = "producer.id"
	ProducerStatusKey = "producer.status"

	SenderWorkersKey  = "sender.workers"
	SenderMessagesKey = "sender.messages"

	GenerateCountKey = "generate.count"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes describes a served request.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// ProducerAttributes identifies a producer. Empty values are omitted.
func ProducerAttributes(id, status string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if id != "" {
		attrs = append(attrs, attribute.String(ProducerIDKey, id))
	}
	if status != "" {
		attrs = append(attrs, attribute.String(ProducerStatusKey, status))
	}
	return attrs
}

// SenderAttributes describes one dispatch run.
func SenderAttributes(workers, messages int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(SenderWorkersKey, workers),
		attribute.Int(SenderMessagesKey, messages),
	}
}

// ErrorAttributes marks a span as failed with a coarse error class.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
