package telemetry

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any, headers map[string]string) error
}

// Audit actions emitted by the messaging core.
const (
	ActionMessageSent         = "message_sent"
	ActionConversationDeleted = "conversation_deleted"
	ActionRequestSent         = "connection_requested"
	ActionRequestAccepted     = "connection_accepted"
	ActionRequestRejected     = "connection_rejected"
)

type AuditEmitter struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
	log         zerolog.Logger
}

type AuditEnvelope struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	OccurredAt    string       `json:"occurred_at"`
	Service       string       `json:"service"`
	Environment   string       `json:"environment"`
	RequestID     string       `json:"request_id"`
	ActorID       string       `json:"actor_id,omitempty"`
	Payload       AuditPayload `json:"payload"`
}

type AuditPayload struct {
	Action   string `json:"action"`
	TargetID string `json:"target_id,omitempty"`
	Outcome  string `json:"outcome"`
}

func NewAuditEmitter(publisher Publisher, routingKey, service, environment string, log zerolog.Logger) *AuditEmitter {
	return &AuditEmitter{
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
		log:         log,
	}
}

// Emit records that actor performed action on target. A nil emitter is valid
// and does nothing.
func (e *AuditEmitter) Emit(ctx context.Context, requestID, actorID, action, targetID, outcome string) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := AuditEnvelope{
		SchemaVersion: 1,
		EventType:     "audit_log",
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		ActorID:       actorID,
		Payload: AuditPayload{
			Action:   action,
			TargetID: targetID,
			Outcome:  outcome,
		},
	}

	headers := map[string]string{"x-request-id": requestID}
	if err := e.publisher.Publish(ctx, e.routingKey, envelope, headers); err != nil {
		e.log.Warn().Err(err).Str("action", action).Msg("audit publish failed")
	}
}
