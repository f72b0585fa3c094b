// SPDX-License-Identifier: MIT

package telemetry

import (
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestHTTPAttributes(t *testing.T) {
	attrs := HTTPAttributes("GET", "/producers/{id}", "http://localhost:8000/producers/x", 200)

	if len(attrs) != 4 {
		t.Fatalf("Expected 4 attributes, got %d", len(attrs))
	}

	verifyAttribute(t, attrs, HTTPMethodKey, "GET")
	verifyAttribute(t, attrs, HTTPRouteKey, "/producers/{id}")
	verifyAttribute(t, attrs, HTTPURLKey, "http://localhost:8000/producers/x")
	verifyIntAttribute(t, attrs, HTTPStatusCodeKey, 200)
}

func TestProducerAttributes(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		status  string
		wantLen int
	}{
		{name: "all fields", id: "p1", status: "SENDING", wantLen: 2},
		{name: "only id", id: "p1", wantLen: 1},
		{name: "empty", wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := ProducerAttributes(tt.id, tt.status)
			if len(attrs) != tt.wantLen {
				t.Errorf("Expected %d attributes, got %d", tt.wantLen, len(attrs))
			}
			if tt.id != "" {
				verifyAttribute(t, attrs, ProducerIDKey, tt.id)
			}
			if tt.status != "" {
				verifyAttribute(t, attrs, ProducerStatusKey, tt.status)
			}
		})
	}
}

func TestSenderAttributes(t *testing.T) {
	attrs := SenderAttributes(4, 1000)
	verifyIntAttribute(t, attrs, SenderWorkersKey, 4)
	verifyIntAttribute(t, attrs, SenderMessagesKey, 1000)
}

func TestErrorAttributes(t *testing.T) {
	attrs := ErrorAttributes("store")

	if len(attrs) != 2 {
		t.Fatalf("Expected 2 attributes, got %d", len(attrs))
	}
	for _, attr := range attrs {
		if string(attr.Key) == ErrorKey && !attr.Value.AsBool() {
			t.Errorf("Expected %s=true", ErrorKey)
		}
	}
	verifyAttribute(t, attrs, ErrorTypeKey, "store")
}

func verifyAttribute(t *testing.T, attrs []attribute.KeyValue, key, expectedValue string) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			if attr.Value.AsString() != expectedValue {
				t.Errorf("Expected %s=%s, got %s", key, expectedValue, attr.Value.AsString())
			}
			return
		}
	}
	t.Errorf("Attribute %s not found", key)
}

func verifyIntAttribute(t *testing.T, attrs []attribute.KeyValue, key string, expectedValue int) {
	t.Helper()
	for _, attr := range attrs {
		if string(attr.Key) == key {
			if attr.Value.AsInt64() != int64(expectedValue) {
				t.Errorf("Expected %s=%d, got %d", key, expectedValue, attr.Value.AsInt64())
			}
			return
		}
	}
	t.Errorf("Attribute %s not found", key)
}
