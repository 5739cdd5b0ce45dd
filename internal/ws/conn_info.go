package ws

import "time"

const (
	TransportSocketIO  = "socketio"
	TransportWebSocket = "websocket"
)

// Conn is one open realtime connection as seen by the hub.
type Conn interface {
	ID() string
	Emit(event string, payload any) error
	Close() error
}

type ConnInfo struct {
	ConnID      string
	Transport   string
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
