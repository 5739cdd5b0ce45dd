package wsclient_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-messaging/internal/auth"
	"campus-messaging/internal/config"
	"campus-messaging/internal/events"
	"campus-messaging/internal/models"
	"campus-messaging/internal/presence"
	"campus-messaging/internal/repositories/memory"
	"campus-messaging/internal/server"
	"campus-messaging/internal/services"
	"campus-messaging/internal/ws"
	"campus-messaging/internal/wsclient"
)

type stack struct {
	srv    *httptest.Server
	tokens *auth.Tokens
	hub    *ws.Hub
}

func newStack(t *testing.T) *stack {
	t.Helper()
	log := zerolog.Nop()

	store := memory.NewStore()
	store.PutUser(models.User{ID: "u1", Username: "asha"})
	store.PutUser(models.User{ID: "u2", Username: "bilal"})

	hub := ws.NewHub(presence.NewMemoryRegistry(), log)
	tokens := auth.NewTokens("test-secret", "campus-messaging", time.Hour)

	router, err := server.NewRouter(server.Deps{
		Config:      &config.Config{Env: "test", ServiceName: "campus-messaging", CORSOrigins: "http://localhost:5173"},
		Log:         log,
		Hub:         hub,
		Chat:        services.NewChatService(store, store, hub, log),
		Connections: services.NewConnectionService(store, store, hub, log),
		Tokens:      tokens,
		Users:       store,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &stack{srv: srv, tokens: tokens, hub: hub}
}

func (s *stack) dial(t *testing.T) *wsclient.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := wsclient.Dial(ctx, "ws"+strings.TrimPrefix(s.srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func (s *stack) call(t *testing.T, userID, method, path, body string) *http.Response {
	t.Helper()
	token, err := s.tokens.Generate(userID)
	require.NoError(t, err)

	req, err := http.NewRequest(method, s.srv.URL+path, bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// joinAs joins the user room and waits for the hub to confirm it.
func joinAs(t *testing.T, ctx context.Context, c *wsclient.Client, userID string) {
	t.Helper()
	require.NoError(t, c.JoinUserRoom(userID))
	for {
		ev, err := c.Next(ctx, events.UserOnline)
		require.NoError(t, err)
		var p events.PresencePayload
		require.NoError(t, ev.Decode(&p))
		if p.UserID == userID {
			return
		}
	}
}

func TestPrivateMessageRoundTrip(t *testing.T) {
	s := newStack(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bob := s.dial(t)
	joinAs(t, ctx, bob, "u2")
	alice := s.dial(t)
	joinAs(t, ctx, alice, "u1")

	resp := s.call(t, "u1", http.MethodPost, "/chat/send", `{"recipientId":"u2","content":"hello"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sent struct {
		Success bool                  `json:"success"`
		Data    models.PrivateMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sent))
	require.True(t, sent.Success)

	ev, err := bob.Next(ctx, events.ReceivePrivateMessage)
	require.NoError(t, err)
	var received events.DeliveredMessage
	require.NoError(t, ev.Decode(&received))
	assert.Equal(t, "hello", received.Content)
	assert.Equal(t, "u1", received.Sender)
	assert.Equal(t, "u2", received.Recipient)
	assert.Equal(t, "asha", received.SenderName)

	ev, err = alice.Next(ctx, events.MessageSentConfirmation)
	require.NoError(t, err)
	var confirmed models.PrivateMessage
	require.NoError(t, ev.Decode(&confirmed))
	assert.Equal(t, sent.Data.ID, confirmed.ID)
}

func TestMessageToDisconnectedUserLandsInHistory(t *testing.T) {
	s := newStack(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bob := s.dial(t)
	joinAs(t, ctx, bob, "u2")
	alice := s.dial(t)
	joinAs(t, ctx, alice, "u1")

	require.NoError(t, bob.Close())
	ev, err := alice.Next(ctx, events.UserOffline)
	require.NoError(t, err)
	var offline events.PresencePayload
	require.NoError(t, ev.Decode(&offline))
	assert.Equal(t, "u2", offline.UserID)

	resp := s.call(t, "u1", http.MethodPost, "/chat/send", `{"recipientId":"u2","content":"are you there?"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.call(t, "u2", http.MethodGet, "/chat/history/u1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history struct {
		Data []models.PrivateMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	require.Len(t, history.Data, 1)
	assert.Equal(t, "are you there?", history.Data[0].Content)

	online, err := s.hub.Online(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, online)
}

func TestTypingAndEndChatOverSocket(t *testing.T) {
	s := newStack(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bob := s.dial(t)
	joinAs(t, ctx, bob, "u2")
	alice := s.dial(t)
	joinAs(t, ctx, alice, "u1")

	require.NoError(t, alice.StartTyping("u2", "asha"))
	ev, err := bob.Next(ctx, events.UserTyping)
	require.NoError(t, err)
	assert.JSONEq(t, `{"typerName":"asha","isTyping":true}`, string(ev.Data))

	require.NoError(t, alice.EndChat("u2", "u1"))
	for _, c := range []*wsclient.Client{bob, alice} {
		ev, err := c.Next(ctx, events.ChatEnded)
		require.NoError(t, err)
		assert.JSONEq(t, `{"endedBy":"u1"}`, string(ev.Data))
	}
}
