package ws

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	eiows "github.com/googollee/go-socket.io/engineio/transport/websocket"
	"github.com/rs/zerolog"

	"campus-messaging/internal/events"
	"campus-messaging/internal/observability"
)

// socketConn adapts a Socket.IO connection to Conn. Rooms live in the hub,
// not in the Socket.IO server.
type socketConn struct {
	s socketio.Conn
}

func (c socketConn) ID() string {
	return c.s.ID()
}

func (c socketConn) Emit(event string, payload any) error {
	if payload == nil {
		c.s.Emit(event)
		return nil
	}
	c.s.Emit(event, payload)
	return nil
}

func (c socketConn) Close() error {
	return c.s.Close()
}

// NewSocketIOServer builds the Socket.IO transport and binds every inbound
// event to hub. The caller runs Serve and Close.
func NewSocketIOServer(hub *Hub, checkOrigin func(*http.Request) bool, log zerolog.Logger) *socketio.Server {
	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&eiows.Transport{CheckOrigin: checkOrigin},
			&polling.Transport{CheckOrigin: checkOrigin},
		},
	})

	b := socketIOBinding{hub: hub, log: log, ctx: context.Background()}
	server.OnConnect("/", b.connect)
	server.OnEvent("/", events.JoinUserRoom, b.joinUserRoom)
	server.OnEvent("/", events.TypingStart, b.typingStart)
	server.OnEvent("/", events.TypingStop, b.typingStop)
	server.OnEvent("/", events.RequestConnection, b.requestConnection)
	server.OnEvent("/", events.AcceptConnection, b.acceptConnection)
	server.OnEvent("/", events.EndChat, b.endChat)
	server.OnEvent("/", events.JoinGroup, b.joinGroup)
	server.OnEvent("/", events.LeaveGroup, b.leaveGroup)
	server.OnDisconnect("/", b.disconnect)
	server.OnError("/", b.fail)

	return server
}

// socketIOBinding maps Socket.IO callbacks onto the hub.
type socketIOBinding struct {
	hub *Hub
	log zerolog.Logger
	ctx context.Context
}

func (b socketIOBinding) connect(s socketio.Conn) error {
	req := &http.Request{Header: s.RemoteHeader()}
	if addr := s.RemoteAddr(); addr != nil {
		req.RemoteAddr = addr.String()
	}
	meta := observability.MetaFromRequest(req)
	b.hub.Connect(b.ctx, socketConn{s: s}, ConnInfo{
		Transport: TransportSocketIO,
		DeviceID:  meta.DeviceID,
		IP:        meta.IP,
		RequestID: meta.RequestID,
	})
	return nil
}

func (b socketIOBinding) joinUserRoom(s socketio.Conn, userID string) {
	b.hub.JoinUserRoom(b.ctx, s.ID(), userID)
}

func (b socketIOBinding) typingStart(s socketio.Conn, p events.TypingStartPayload) {
	b.hub.TypingStart(s.ID(), p)
}

func (b socketIOBinding) typingStop(s socketio.Conn, p events.TypingStopPayload) {
	b.hub.TypingStop(s.ID(), p)
}

func (b socketIOBinding) requestConnection(s socketio.Conn, p events.RequestConnectionPayload) {
	b.hub.RequestConnection(s.ID(), p)
}

func (b socketIOBinding) acceptConnection(s socketio.Conn, p events.AcceptConnectionPayload) {
	b.hub.AcceptConnection(s.ID(), p)
}

func (b socketIOBinding) endChat(s socketio.Conn, p events.EndChatPayload) {
	b.hub.EndChat(s.ID(), p)
}

func (b socketIOBinding) joinGroup(s socketio.Conn, groupID string) {
	b.hub.JoinGroup(s.ID(), groupID)
}

func (b socketIOBinding) leaveGroup(s socketio.Conn, groupID string) {
	b.hub.LeaveGroup(s.ID(), groupID)
}

func (b socketIOBinding) disconnect(s socketio.Conn, reason string) {
	b.hub.Disconnect(b.ctx, s.ID(), reason)
}

func (b socketIOBinding) fail(s socketio.Conn, err error) {
	if s == nil {
		b.log.Warn().Err(err).Msg("socket.io error")
		return
	}
	b.hub.ReportError(b.ctx, s.ID(), err)
}

// SocketIOHandler mounts server on a gin route.
func SocketIOHandler(server *socketio.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		server.ServeHTTP(c.Writer, c.Request)
	}
}
