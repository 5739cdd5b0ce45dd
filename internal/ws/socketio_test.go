package ws

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-messaging/internal/events"
)

type socketEmit struct {
	event string
	args  []interface{}
}

// fakeSocket stands in for a go-socket.io connection. Methods the binding
// never calls fall through to the nil embedded interface.
type fakeSocket struct {
	socketio.Conn
	id     string
	header http.Header

	mu     sync.Mutex
	emits  []socketEmit
	closed bool
}

func newFakeSocket(id string) *fakeSocket {
	header := http.Header{}
	header.Set("X-Device-Id", "device-"+id)
	header.Set("X-Request-Id", "req-"+id)
	return &fakeSocket{id: id, header: header}
}

func (s *fakeSocket) ID() string                { return s.id }
func (s *fakeSocket) RemoteHeader() http.Header { return s.header }

func (s *fakeSocket) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.ParseIP("10.0.0.7"), Port: 5000}
}

func (s *fakeSocket) Emit(event string, v ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emits = append(s.emits, socketEmit{event: event, args: v})
}

func (s *fakeSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSocket) args(event string) [][]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out [][]interface{}
	for _, e := range s.emits {
		if e.event == event {
			out = append(out, e.args)
		}
	}
	return out
}

func newBinding(t *testing.T) (socketIOBinding, *Hub) {
	t.Helper()
	hub, _ := newTestHub(t)
	return socketIOBinding{hub: hub, log: zerolog.Nop(), ctx: context.Background()}, hub
}

func TestSocketIOConnectRecordsRequestMeta(t *testing.T) {
	b, hub := newBinding(t)
	s := newFakeSocket("s1")

	require.NoError(t, b.connect(s))

	hub.mu.RLock()
	session, ok := hub.sessions["s1"]
	hub.mu.RUnlock()
	require.True(t, ok)
	assert.Equal(t, TransportSocketIO, session.info.Transport)
	assert.Equal(t, "device-s1", session.info.DeviceID)
	assert.Equal(t, "req-s1", session.info.RequestID)
	assert.Equal(t, "10.0.0.7", session.info.IP)
}

func TestSocketIORelaysInboundEvents(t *testing.T) {
	b, _ := newBinding(t)
	alice := newFakeSocket("s1")
	bob := newFakeSocket("s2")
	require.NoError(t, b.connect(alice))
	require.NoError(t, b.connect(bob))

	b.joinUserRoom(alice, "u1")
	b.joinUserRoom(bob, "u2")
	assert.Len(t, alice.args(events.UserOnline), 2)

	b.typingStart(alice, events.TypingStartPayload{TargetUserID: "u2", TyperName: "Alice"})
	b.typingStop(alice, events.TypingStopPayload{TargetUserID: "u2"})
	assert.Equal(t, [][]interface{}{
		{events.TypingPayload{TyperName: "Alice", IsTyping: true}},
		{events.TypingPayload{IsTyping: false}},
	}, bob.args(events.UserTyping))

	aliceParty := events.Party{ID: "u1", Username: "Alice"}
	b.requestConnection(alice, events.RequestConnectionPayload{TargetUserID: "u2", Requester: aliceParty})
	assert.Equal(t, [][]interface{}{{aliceParty}}, bob.args(events.IncomingRequest))

	bobParty := events.Party{ID: "u2", Username: "Bob"}
	b.acceptConnection(bob, events.AcceptConnectionPayload{TargetUserID: "u1", Accepter: bobParty})
	assert.Equal(t, [][]interface{}{{bobParty}}, alice.args(events.RequestAccepted))

	b.endChat(alice, events.EndChatPayload{TargetUserID: "u2", EndedBy: "u1"})
	ended := [][]interface{}{{events.ChatEndedPayload{EndedBy: "u1"}}}
	assert.Equal(t, ended, bob.args(events.ChatEnded))
	assert.Equal(t, ended, alice.args(events.ChatEnded))
}

func TestSocketIOGroupMembership(t *testing.T) {
	b, hub := newBinding(t)
	s := newFakeSocket("s1")
	require.NoError(t, b.connect(s))

	b.joinGroup(s, "g1")
	hub.Publish(events.GroupRoom("g1"), "group_message", "hi")
	b.leaveGroup(s, "g1")
	hub.Publish(events.GroupRoom("g1"), "group_message", "again")

	assert.Equal(t, [][]interface{}{{"hi"}}, s.args("group_message"))
}

func TestSocketIOEmitsBareEventForNilPayload(t *testing.T) {
	b, hub := newBinding(t)
	s := newFakeSocket("s1")
	require.NoError(t, b.connect(s))
	b.joinUserRoom(s, "u1")

	events.NotifyNewNotification(hub, "u1")

	got := s.args(events.NewNotification)
	require.Len(t, got, 1)
	assert.Empty(t, got[0])
}

func TestSocketIODisconnectAnnouncesOffline(t *testing.T) {
	b, hub := newBinding(t)
	leaving := newFakeSocket("s1")
	watcher := newFakeSocket("s2")
	require.NoError(t, b.connect(leaving))
	require.NoError(t, b.connect(watcher))
	b.joinUserRoom(leaving, "u1")

	b.disconnect(leaving, "client namespace disconnect")

	assert.Equal(t, [][]interface{}{{events.PresencePayload{UserID: "u1"}}}, watcher.args(events.UserOffline))
	online, err := hub.Online(context.Background())
	require.NoError(t, err)
	assert.Empty(t, online)
}

func TestSocketIOErrorWithoutConnection(t *testing.T) {
	b, _ := newBinding(t)
	s := newFakeSocket("s1")
	require.NoError(t, b.connect(s))

	assert.NotPanics(t, func() {
		b.fail(nil, io.ErrUnexpectedEOF)
		b.fail(s, io.ErrUnexpectedEOF)
	})
}

func TestShutdownClosesSocketIOConnections(t *testing.T) {
	b, hub := newBinding(t)
	s := newFakeSocket("s1")
	require.NoError(t, b.connect(s))

	require.NoError(t, hub.Shutdown(context.Background()))

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.True(t, s.closed)
}

func TestSocketIOServerHandshake(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub, _ := newTestHub(t)
	server := NewSocketIOServer(hub, func(*http.Request) bool { return true }, zerolog.Nop())
	go func() { _ = server.Serve() }()
	defer server.Close()

	router := gin.New()
	router.GET("/socket.io/*any", SocketIOHandler(server))
	router.POST("/socket.io/*any", SocketIOHandler(server))
	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/socket.io/?EIO=3&transport=polling")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"sid"`)
}
