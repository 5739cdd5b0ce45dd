package ws

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"campus-messaging/internal/events"
	"campus-messaging/internal/observability"
	"campus-messaging/internal/presence"
)

// Hub tracks open connections and the rooms they subscribe to. It satisfies
// events.Publisher.
type Hub struct {
	rooms    map[string]map[string]Conn
	sessions map[string]*session
	mu       sync.RWMutex

	registry presence.Registry
	log      zerolog.Logger
	limit    rate.Limit
	burst    int
}

type session struct {
	conn    Conn
	info    ConnInfo
	userID  string
	rooms   map[string]struct{}
	limiter *rate.Limiter
}

type Option func(*Hub)

// WithEventRate caps inbound events per connection. Excess events are dropped.
func WithEventRate(perSecond float64, burst int) Option {
	return func(h *Hub) {
		if perSecond > 0 {
			h.limit = rate.Limit(perSecond)
		}
		if burst > 0 {
			h.burst = burst
		}
	}
}

// NewHub creates an empty hub backed by registry for presence.
func NewHub(registry presence.Registry, log zerolog.Logger, opts ...Option) *Hub {
	h := &Hub{
		rooms:    make(map[string]map[string]Conn),
		sessions: make(map[string]*session),
		registry: registry,
		log:      log,
		limit:    rate.Inf,
		burst:    1,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var _ events.Publisher = (*Hub)(nil)

// Connect records a new connection. It belongs to no room yet.
func (h *Hub) Connect(ctx context.Context, conn Conn, info ConnInfo) {
	info.ConnID = conn.ID()
	if info.ConnectedAt.IsZero() {
		info.ConnectedAt = time.Now()
	}

	h.mu.Lock()
	h.sessions[info.ConnID] = &session{
		conn:    conn,
		info:    info,
		rooms:   make(map[string]struct{}),
		limiter: rate.NewLimiter(h.limit, h.burst),
	}
	h.mu.Unlock()

	observability.IncWSActive(info.Transport)
	h.log.Debug().Str("conn_id", info.ConnID).Str("transport", info.Transport).Msg("realtime connection opened")
	publishLifecycle(ctx, info, "", "ws_connect", "")
}

// Disconnect drops the connection from every room. A connection that joined
// its user room is unregistered from presence and announced offline.
func (h *Hub) Disconnect(ctx context.Context, connID, reason string) {
	h.mu.Lock()
	s, ok := h.sessions[connID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, connID)
	for room := range s.rooms {
		h.leaveLocked(room, connID)
	}
	userID := s.userID
	h.mu.Unlock()

	observability.DecWSActive(s.info.Transport)
	h.log.Debug().Str("conn_id", connID).Str("user_id", userID).Str("reason", reason).Msg("realtime connection closed")

	if userID != "" {
		if err := h.registry.Unregister(ctx, userID); err != nil {
			h.log.Warn().Err(err).Str("user_id", userID).Msg("presence unregister failed")
		}
		h.refreshOnline(ctx)
		h.Broadcast(events.UserOffline, events.PresencePayload{UserID: userID})
	}
	publishLifecycle(ctx, s.info, userID, "ws_disconnect", reason)
}

// ReportError records a transport failure on connID.
func (h *Hub) ReportError(ctx context.Context, connID string, err error) {
	h.mu.RLock()
	s, ok := h.sessions[connID]
	var userID string
	if ok {
		userID = s.userID
	}
	h.mu.RUnlock()

	h.log.Warn().Err(err).Str("conn_id", connID).Msg("realtime connection error")
	if ok {
		publishLifecycle(ctx, s.info, userID, "ws_error", err.Error())
	}
}

// JoinUserRoom subscribes the connection to the private room of userID and
// announces the user online to everyone.
func (h *Hub) JoinUserRoom(ctx context.Context, connID, userID string) {
	if userID == "" {
		return
	}
	s, ok := h.admit(connID, events.JoinUserRoom)
	if !ok {
		return
	}

	h.mu.Lock()
	if h.sessions[connID] != s {
		h.mu.Unlock()
		return
	}
	prev := s.userID
	if prev != "" && prev != userID {
		room := events.UserRoom(prev)
		delete(s.rooms, room)
		h.leaveLocked(room, connID)
	}
	s.userID = userID
	h.joinLocked(s, events.UserRoom(userID))
	h.mu.Unlock()

	// Rebinding a connection to another user takes the previous one offline.
	if prev != "" && prev != userID {
		if err := h.registry.Unregister(ctx, prev); err != nil {
			h.log.Warn().Err(err).Str("user_id", prev).Msg("presence unregister failed")
		}
		h.Broadcast(events.UserOffline, events.PresencePayload{UserID: prev})
	}

	if err := h.registry.Register(ctx, userID, connID); err != nil {
		h.log.Warn().Err(err).Str("user_id", userID).Msg("presence register failed")
	}
	h.refreshOnline(ctx)
	h.Broadcast(events.UserOnline, events.PresencePayload{UserID: userID, SocketID: connID})
}

func (h *Hub) TypingStart(connID string, p events.TypingStartPayload) {
	if _, ok := h.admit(connID, events.TypingStart); !ok || p.TargetUserID == "" {
		return
	}
	h.Publish(events.UserRoom(p.TargetUserID), events.UserTyping, events.TypingPayload{TyperName: p.TyperName, IsTyping: true})
}

func (h *Hub) TypingStop(connID string, p events.TypingStopPayload) {
	if _, ok := h.admit(connID, events.TypingStop); !ok || p.TargetUserID == "" {
		return
	}
	h.Publish(events.UserRoom(p.TargetUserID), events.UserTyping, events.TypingPayload{IsTyping: false})
}

func (h *Hub) RequestConnection(connID string, p events.RequestConnectionPayload) {
	if _, ok := h.admit(connID, events.RequestConnection); !ok || p.TargetUserID == "" {
		return
	}
	events.NotifyIncomingRequest(h, p.TargetUserID, p.Requester)
}

func (h *Hub) AcceptConnection(connID string, p events.AcceptConnectionPayload) {
	if _, ok := h.admit(connID, events.AcceptConnection); !ok || p.TargetUserID == "" {
		return
	}
	events.NotifyRequestAccepted(h, p.TargetUserID, p.Accepter)
}

// EndChat closes the chat on both sides: the target's room and the ender's
// own room when this connection has joined one.
func (h *Hub) EndChat(connID string, p events.EndChatPayload) {
	s, ok := h.admit(connID, events.EndChat)
	if !ok || p.TargetUserID == "" {
		return
	}

	h.mu.RLock()
	ownID := s.userID
	h.mu.RUnlock()

	payload := events.ChatEndedPayload{EndedBy: p.EndedBy}
	h.Publish(events.UserRoom(p.TargetUserID), events.ChatEnded, payload)
	if ownID != "" && ownID != p.TargetUserID {
		h.Publish(events.UserRoom(ownID), events.ChatEnded, payload)
	}
}

// JoinGroup subscribes the connection to a group room. Membership of the
// group itself is not checked.
func (h *Hub) JoinGroup(connID, groupID string) {
	s, ok := h.admit(connID, events.JoinGroup)
	if !ok || groupID == "" {
		return
	}
	h.mu.Lock()
	if h.sessions[connID] == s {
		h.joinLocked(s, events.GroupRoom(groupID))
	}
	h.mu.Unlock()
}

func (h *Hub) LeaveGroup(connID, groupID string) {
	s, ok := h.admit(connID, events.LeaveGroup)
	if !ok || groupID == "" {
		return
	}
	room := events.GroupRoom(groupID)
	h.mu.Lock()
	if _, joined := s.rooms[room]; joined {
		delete(s.rooms, room)
		h.leaveLocked(room, connID)
	}
	h.mu.Unlock()
}

// Publish emits event to every connection subscribed to room. Delivery
// failures are logged and never returned; an empty room drops the event.
func (h *Hub) Publish(room, event string, payload any) {
	h.mu.RLock()
	members := h.rooms[room]
	conns := make([]Conn, 0, len(members))
	for _, conn := range members {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		h.emit(conn, event, payload)
	}
}

// Broadcast emits event to every open connection.
func (h *Hub) Broadcast(event string, payload any) {
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.sessions))
	for _, s := range h.sessions {
		conns = append(conns, s.conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		h.emit(conn, event, payload)
	}
}

// Online returns the users currently registered in presence.
func (h *Hub) Online(ctx context.Context) ([]string, error) {
	return h.registry.ListOnline(ctx)
}

// Shutdown closes every open connection. Transports report the resulting
// disconnects back through Disconnect.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.sessions))
	for _, s := range h.sessions {
		conns = append(conns, s.conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := conn.Close(); err != nil {
			h.log.Debug().Err(err).Str("conn_id", conn.ID()).Msg("close on shutdown")
		}
	}
	return nil
}

// admit looks up the session and applies its inbound rate limit.
func (h *Hub) admit(connID, event string) (*session, bool) {
	h.mu.RLock()
	s, ok := h.sessions[connID]
	h.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !s.limiter.Allow() {
		observability.IncWSEvent("dropped", event)
		h.log.Warn().Str("conn_id", connID).Str("event", event).Msg("realtime rate limit exceeded; dropping event")
		return nil, false
	}
	observability.IncWSEvent("in", event)
	return s, true
}

func (h *Hub) emit(conn Conn, event string, payload any) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error().Interface("panic", r).Str("conn_id", conn.ID()).Str("event", event).Msg("realtime emit panicked")
		}
	}()

	if err := conn.Emit(event, payload); err != nil {
		h.log.Warn().Err(err).Str("conn_id", conn.ID()).Str("event", event).Msg("realtime emit failed")
		return
	}
	observability.IncWSEvent("out", event)
}

func (h *Hub) joinLocked(s *session, room string) {
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[string]Conn)
	}
	h.rooms[room][s.info.ConnID] = s.conn
	s.rooms[room] = struct{}{}
}

func (h *Hub) leaveLocked(room, connID string) {
	if conns, ok := h.rooms[room]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(h.rooms, room)
		}
	}
}

func (h *Hub) refreshOnline(ctx context.Context) {
	online, err := h.registry.ListOnline(ctx)
	if err != nil {
		return
	}
	observability.SetOnlineUsers(len(online))
}
