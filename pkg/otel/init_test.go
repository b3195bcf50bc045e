package otel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

func TestServiceAttributesCarryNamespace(t *testing.T) {
	attrs := GetServiceAttributes("aqualink-server", "1.0.0", "production")

	assert.Contains(t, attrs, semconv.ServiceNamespace("aqualink"))
	assert.Contains(t, attrs, semconv.ServiceName("aqualink-server"))
}
