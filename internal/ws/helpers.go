package ws

import (
	"context"
	"time"

	"github.com/google/uuid"

	"campus-messaging/internal/observability"
)

func newConnID() string {
	return uuid.NewString()
}

func wsRoutingKey(transport string) string {
	return "ws_events." + transport
}

// publishLifecycle ships a connect/disconnect/error record to the broker.
func publishLifecycle(ctx context.Context, info ConnInfo, userID, event, reason string) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"transport":   info.Transport,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   userID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(ctx, wsRoutingKey(info.Transport), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, headers)
	observability.IncWSEvent("lifecycle", event)
}
