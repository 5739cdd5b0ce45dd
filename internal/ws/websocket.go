package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"

	"campus-messaging/internal/observability"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = 54 * time.Second
	maxFrameSize = 64 * 1024
	sendBuffer   = 256
)

var (
	ErrConnClosed     = errors.New("connection closed")
	ErrSendBufferFull = errors.New("send buffer full")
)

// WebSocketHandler serves the raw WebSocket transport: JSON frames of
// {"event", "data"} in both directions.
type WebSocketHandler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWebSocketHandler(hub *Hub, checkOrigin func(*http.Request) bool, log zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
		log:      log,
	}
}

// Handle upgrades the request and starts the connection pumps.
func (h *WebSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("campus-messaging/ws").Start(c.Request.Context(), "ws.handshake")
	meta := observability.MetaFromRequest(c.Request)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		span.End()
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	traceID := span.SpanContext().TraceID().String()
	span.End()

	// The request context ends with this handler; the connection outlives it.
	connCtx := context.WithoutCancel(ctx)

	client := newWSConn(conn, h.log)
	h.hub.Connect(connCtx, client, ConnInfo{
		Transport: TransportWebSocket,
		DeviceID:  meta.DeviceID,
		IP:        meta.IP,
		RequestID: meta.RequestID,
		TraceID:   traceID,
	})

	go client.writePump()
	go client.readPump(connCtx, h.hub)
}

type wsConn struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	log       zerolog.Logger
}

func newWSConn(conn *websocket.Conn, log zerolog.Logger) *wsConn {
	return &wsConn{
		id:   newConnID(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
		log:  log,
	}
}

func (c *wsConn) ID() string {
	return c.id
}

// Emit queues a frame for the write pump. It never blocks.
func (c *wsConn) Emit(event string, payload any) error {
	frame := Frame{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		frame.Data = data
	}
	msg, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.done:
		return ErrConnClosed
	default:
		return ErrSendBufferFull
	}
}

// Close asks the write pump to send a close frame and stop.
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return nil
}

func (c *wsConn) readPump(ctx context.Context, hub *Hub) {
	var reason string
	defer func() {
		hub.Disconnect(ctx, c.id, reason)
		_ = c.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			reason = err.Error()
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				hub.ReportError(ctx, c.id, err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.log.Debug().Err(err).Str("conn_id", c.id).Msg("invalid websocket frame")
			continue
		}
		if err := hub.HandleEvent(ctx, c.id, frame.Event, frame.Data); err != nil {
			c.log.Debug().Err(err).Str("conn_id", c.id).Msg("websocket event rejected")
		}
	}
}

func (c *wsConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
