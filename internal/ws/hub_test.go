package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-messaging/internal/events"
	"campus-messaging/internal/presence"
)

type emitted struct {
	event   string
	payload any
}

type fakeConn struct {
	id      string
	mu      sync.Mutex
	got     []emitted
	closed  bool
	failErr error
	panics  bool
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Emit(event string, payload any) error {
	if c.panics {
		panic("boom")
	}
	if c.failErr != nil {
		return c.failErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, emitted{event: event, payload: payload})
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) events(name string) []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []any
	for _, e := range c.got {
		if e.event == name {
			out = append(out, e.payload)
		}
	}
	return out
}

func newTestHub(t *testing.T, opts ...Option) (*Hub, *presence.MemoryRegistry) {
	t.Helper()
	registry := presence.NewMemoryRegistry()
	return NewHub(registry, zerolog.Nop(), opts...), registry
}

func connect(h *Hub, id string) *fakeConn {
	conn := &fakeConn{id: id}
	h.Connect(context.Background(), conn, ConnInfo{Transport: TransportWebSocket})
	return conn
}

func TestJoinUserRoomRegistersPresenceAndBroadcastsOnline(t *testing.T) {
	hub, registry := newTestHub(t)
	a := connect(hub, "c1")
	b := connect(hub, "c2")

	hub.JoinUserRoom(context.Background(), "c1", "u1")

	connID, ok := registry.ConnID("u1")
	require.True(t, ok)
	assert.Equal(t, "c1", connID)

	want := events.PresencePayload{UserID: "u1", SocketID: "c1"}
	assert.Equal(t, []any{want}, a.events(events.UserOnline))
	assert.Equal(t, []any{want}, b.events(events.UserOnline))
}

func TestTypingRelaysOnlyToTargetRoom(t *testing.T) {
	hub, _ := newTestHub(t)
	typer := connect(hub, "c1")
	target := connect(hub, "c2")
	bystander := connect(hub, "c3")
	hub.JoinUserRoom(context.Background(), "c1", "u1")
	hub.JoinUserRoom(context.Background(), "c2", "u2")
	hub.JoinUserRoom(context.Background(), "c3", "u3")

	hub.TypingStart("c1", events.TypingStartPayload{TargetUserID: "u2", TyperName: "Asha"})
	hub.TypingStop("c1", events.TypingStopPayload{TargetUserID: "u2"})

	assert.Equal(t, []any{
		events.TypingPayload{TyperName: "Asha", IsTyping: true},
		events.TypingPayload{IsTyping: false},
	}, target.events(events.UserTyping))
	assert.Empty(t, typer.events(events.UserTyping))
	assert.Empty(t, bystander.events(events.UserTyping))
}

func TestRequestAndAcceptRelayToTarget(t *testing.T) {
	hub, _ := newTestHub(t)
	connect(hub, "c1")
	target := connect(hub, "c2")
	hub.JoinUserRoom(context.Background(), "c2", "u2")

	requester := events.Party{ID: "u1", Username: "asha"}
	hub.RequestConnection("c1", events.RequestConnectionPayload{TargetUserID: "u2", Requester: requester})
	hub.AcceptConnection("c1", events.AcceptConnectionPayload{TargetUserID: "u2", Accepter: requester})

	assert.Equal(t, []any{requester}, target.events(events.IncomingRequest))
	assert.Equal(t, []any{requester}, target.events(events.RequestAccepted))
}

func TestEndChatNotifiesBothRooms(t *testing.T) {
	hub, _ := newTestHub(t)
	ender := connect(hub, "c1")
	enderTab := connect(hub, "c1b")
	peer := connect(hub, "c2")
	hub.JoinUserRoom(context.Background(), "c1", "u1")
	hub.JoinUserRoom(context.Background(), "c1b", "u1")
	hub.JoinUserRoom(context.Background(), "c2", "u2")

	hub.EndChat("c1", events.EndChatPayload{TargetUserID: "u2", EndedBy: "u1"})

	want := []any{events.ChatEndedPayload{EndedBy: "u1"}}
	assert.Equal(t, want, peer.events(events.ChatEnded))
	assert.Equal(t, want, ender.events(events.ChatEnded))
	assert.Equal(t, want, enderTab.events(events.ChatEnded))
}

func TestDisconnectUnregistersAndBroadcastsOffline(t *testing.T) {
	hub, registry := newTestHub(t)
	connect(hub, "c1")
	watcher := connect(hub, "c2")
	hub.JoinUserRoom(context.Background(), "c1", "u1")

	hub.Disconnect(context.Background(), "c1", "client namespace disconnect")

	_, ok := registry.ConnID("u1")
	assert.False(t, ok)
	assert.Equal(t, []any{events.PresencePayload{UserID: "u1"}}, watcher.events(events.UserOffline))
	assert.NotContains(t, hub.rooms, events.UserRoom("u1"))

	online, err := hub.Online(context.Background())
	require.NoError(t, err)
	assert.Empty(t, online)
}

func TestRejoinAsAnotherUserReleasesPreviousUser(t *testing.T) {
	hub, registry := newTestHub(t)
	conn := connect(hub, "c1")
	watcher := connect(hub, "c2")
	hub.JoinUserRoom(context.Background(), "c1", "u1")

	hub.JoinUserRoom(context.Background(), "c1", "u2")

	_, ok := registry.ConnID("u1")
	assert.False(t, ok)
	connID, ok := registry.ConnID("u2")
	require.True(t, ok)
	assert.Equal(t, "c1", connID)
	assert.NotContains(t, hub.rooms, events.UserRoom("u1"))
	assert.Equal(t, []any{events.PresencePayload{UserID: "u1"}}, watcher.events(events.UserOffline))

	hub.Publish(events.UserRoom("u1"), events.UserTyping, events.TypingPayload{IsTyping: true})
	assert.Empty(t, conn.events(events.UserTyping))

	online, err := hub.Online(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, online)
}

func TestDisconnectWithoutUserRoomIsSilent(t *testing.T) {
	hub, _ := newTestHub(t)
	connect(hub, "c1")
	watcher := connect(hub, "c2")

	hub.Disconnect(context.Background(), "c1", "transport close")
	hub.Disconnect(context.Background(), "unknown", "transport close")

	assert.Empty(t, watcher.events(events.UserOffline))
}

func TestConnectionWithoutUserRoomReceivesNoTargetedEvents(t *testing.T) {
	hub, _ := newTestHub(t)
	lurker := connect(hub, "c1")

	hub.Publish(events.UserRoom("u2"), events.ReceivePrivateMessage, map[string]string{"content": "hello"})

	assert.Empty(t, lurker.events(events.ReceivePrivateMessage))
}

func TestPublishSurvivesFailingAndPanickingConns(t *testing.T) {
	hub, _ := newTestHub(t)
	broken := &fakeConn{id: "c1", failErr: errors.New("write: broken pipe")}
	panicky := &fakeConn{id: "c2", panics: true}
	healthy := &fakeConn{id: "c3"}
	for _, c := range []*fakeConn{broken, panicky, healthy} {
		hub.Connect(context.Background(), c, ConnInfo{Transport: TransportSocketIO})
		hub.JoinGroup(c.id, "g1")
	}

	assert.NotPanics(t, func() {
		hub.Publish(events.GroupRoom("g1"), "group_message", "hi")
	})
	assert.Equal(t, []any{"hi"}, healthy.events("group_message"))
}

func TestJoinAndLeaveGroup(t *testing.T) {
	hub, _ := newTestHub(t)
	member := connect(hub, "c1")

	hub.JoinGroup("c1", "g7")
	hub.Publish(events.GroupRoom("g7"), "group_message", 1)
	hub.LeaveGroup("c1", "g7")
	hub.Publish(events.GroupRoom("g7"), "group_message", 2)

	assert.Equal(t, []any{1}, member.events("group_message"))
	assert.NotContains(t, hub.rooms, events.GroupRoom("g7"))
}

func TestHandleEventDecodesFrames(t *testing.T) {
	hub, registry := newTestHub(t)
	connect(hub, "c1")
	target := connect(hub, "c2")

	require.NoError(t, hub.HandleEvent(context.Background(), "c2", events.JoinUserRoom, json.RawMessage(`"u2"`)))
	require.NoError(t, hub.HandleEvent(context.Background(), "c1", events.TypingStart,
		json.RawMessage(`{"targetUserId":"u2","typerName":"Asha"}`)))

	_, ok := registry.ConnID("u2")
	assert.True(t, ok)
	assert.Equal(t, []any{events.TypingPayload{TyperName: "Asha", IsTyping: true}}, target.events(events.UserTyping))
}

func TestHandleEventRejectsUnknownAndMalformed(t *testing.T) {
	hub, _ := newTestHub(t)
	connect(hub, "c1")

	err := hub.HandleEvent(context.Background(), "c1", "send_private_message", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrUnknownEvent)

	err = hub.HandleEvent(context.Background(), "c1", events.TypingStart, json.RawMessage(`[1,2]`))
	assert.Error(t, err)

	err = hub.HandleEvent(context.Background(), "c1", events.JoinGroup, nil)
	assert.Error(t, err)
}

func TestRateLimitDropsExcessEvents(t *testing.T) {
	hub, _ := newTestHub(t, WithEventRate(0.001, 1))
	connect(hub, "c1")
	target := connect(hub, "c2")
	hub.JoinUserRoom(context.Background(), "c2", "u2")

	hub.TypingStart("c1", events.TypingStartPayload{TargetUserID: "u2"})
	hub.TypingStart("c1", events.TypingStartPayload{TargetUserID: "u2"})

	assert.Len(t, target.events(events.UserTyping), 1)
}

func TestShutdownClosesConnections(t *testing.T) {
	hub, _ := newTestHub(t)
	a := connect(hub, "c1")
	b := connect(hub, "c2")

	require.NoError(t, hub.Shutdown(context.Background()))

	assert.True(t, a.closed)
	assert.True(t, b.closed)
}
