package observability

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// RequestMeta is the caller identity attached to realtime lifecycle events.
type RequestMeta struct {
	RequestID string
	DeviceID  string
	IP        string
}

// MetaFromRequest extracts request metadata, minting a request id when the
// client did not send one.
func MetaFromRequest(r *http.Request) RequestMeta {
	requestID := r.Header.Get("X-Request-Id")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return RequestMeta{
		RequestID: requestID,
		DeviceID:  r.Header.Get("X-Device-Id"),
		IP:        IPFromRequest(r),
	}
}

func IPFromRequest(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
