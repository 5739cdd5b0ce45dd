package observability

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetaFromRequestPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.7, 10.0.0.1")
	req.Header.Set("X-Request-Id", "req-1")
	req.Header.Set("X-Device-Id", "phone")

	meta := MetaFromRequest(req)
	assert.Equal(t, "10.0.0.7", meta.IP)
	assert.Equal(t, "req-1", meta.RequestID)
	assert.Equal(t, "phone", meta.DeviceID)
}

func TestMetaFromRequestMintsRequestID(t *testing.T) {
	req := httptest.NewRequest("GET", "/ws", nil)
	meta := MetaFromRequest(req)
	assert.NotEmpty(t, meta.RequestID)
	assert.Equal(t, "192.0.2.1", meta.IP)
}

func TestBuildHeadersSkipsEmpty(t *testing.T) {
	assert.Equal(t, map[string]string{"x-request-id": "r"}, BuildHeaders("r", ""))
	assert.Empty(t, BuildHeaders("", ""))
}

func TestSplitFullMethod(t *testing.T) {
	service, method := splitFullMethod("/grpc.health.v1.Health/Check")
	assert.Equal(t, "grpc.health.v1.Health", service)
	assert.Equal(t, "Check", method)

	service, method = splitFullMethod("bogus")
	assert.Equal(t, "unknown", service)
	assert.Equal(t, "unknown", method)
}
