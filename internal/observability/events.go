package observability

import "context"

// Publisher ships JSON events to the message broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any, headers map[string]string) error
}

type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	Payload   interface{} `json:"payload"`
}

func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}

var defaultPublisher Publisher

func SetPublisher(publisher Publisher) {
	defaultPublisher = publisher
}

// PublishEvent sends message through the configured publisher. Without one
// it is a no-op.
func PublishEvent(ctx context.Context, routingKey string, message interface{}, headers map[string]string) error {
	if defaultPublisher == nil {
		return nil
	}

	err := defaultPublisher.Publish(ctx, routingKey, message, headers)
	if err != nil {
		IncAMQPPublishError()
	}
	return err
}
