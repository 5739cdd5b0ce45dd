package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"campus-messaging/internal/events"
)

var ErrUnknownEvent = errors.New("unknown realtime event")

// Frame is the JSON envelope of the raw WebSocket transport, used in both
// directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// HandleEvent decodes an inbound frame payload and dispatches it to the
// matching hub operation.
func (h *Hub) HandleEvent(ctx context.Context, connID, event string, data json.RawMessage) error {
	switch event {
	case events.JoinUserRoom:
		var userID string
		if err := decode(event, data, &userID); err != nil {
			return err
		}
		h.JoinUserRoom(ctx, connID, userID)
	case events.TypingStart:
		var p events.TypingStartPayload
		if err := decode(event, data, &p); err != nil {
			return err
		}
		h.TypingStart(connID, p)
	case events.TypingStop:
		var p events.TypingStopPayload
		if err := decode(event, data, &p); err != nil {
			return err
		}
		h.TypingStop(connID, p)
	case events.RequestConnection:
		var p events.RequestConnectionPayload
		if err := decode(event, data, &p); err != nil {
			return err
		}
		h.RequestConnection(connID, p)
	case events.AcceptConnection:
		var p events.AcceptConnectionPayload
		if err := decode(event, data, &p); err != nil {
			return err
		}
		h.AcceptConnection(connID, p)
	case events.EndChat:
		var p events.EndChatPayload
		if err := decode(event, data, &p); err != nil {
			return err
		}
		h.EndChat(connID, p)
	case events.JoinGroup:
		var groupID string
		if err := decode(event, data, &groupID); err != nil {
			return err
		}
		h.JoinGroup(connID, groupID)
	case events.LeaveGroup:
		var groupID string
		if err := decode(event, data, &groupID); err != nil {
			return err
		}
		h.LeaveGroup(connID, groupID)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}
	return nil
}

func decode(event string, data json.RawMessage, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("decode %s: missing data", event)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", event, err)
	}
	return nil
}
