// Package wsclient is a Go client for the raw WebSocket transport. It joins
// the caller's private room once per session and group rooms on demand.
package wsclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"campus-messaging/internal/events"
	"campus-messaging/internal/ws"
)

var ErrClosed = errors.New("wsclient: connection closed")

// Event is one server-to-client frame.
type Event struct {
	Name string
	Data json.RawMessage
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

type Client struct {
	conn    *websocket.Conn
	events  chan Event
	writeMu sync.Mutex

	closeOnce sync.Once
	errMu     sync.Mutex
	err       error
}

// Dial connects to a /ws endpoint such as ws://host:8083/ws.
func Dial(ctx context.Context, url string, header http.Header) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}

	c := &Client{
		conn:   conn,
		events: make(chan Event, 64),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.events)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.setErr(err)
			return
		}
		var frame ws.Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		c.events <- Event{Name: frame.Event, Data: frame.Data}
	}
}

// Events streams inbound events. The channel closes with the connection.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Next waits for the next event called name, skipping any others.
func (c *Client) Next(ctx context.Context, name string) (Event, error) {
	for {
		select {
		case ev, ok := <-c.events:
			if !ok {
				return Event{}, c.Err()
			}
			if ev.Name == name {
				return ev, nil
			}
		case <-ctx.Done():
			return Event{}, ctx.Err()
		}
	}
}

// Emit sends one event frame.
func (c *Client) Emit(event string, payload any) error {
	frame := ws.Frame{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		frame.Data = data
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(frame)
}

func (c *Client) JoinUserRoom(userID string) error {
	return c.Emit(events.JoinUserRoom, userID)
}

func (c *Client) JoinGroup(groupID string) error {
	return c.Emit(events.JoinGroup, groupID)
}

func (c *Client) LeaveGroup(groupID string) error {
	return c.Emit(events.LeaveGroup, groupID)
}

func (c *Client) StartTyping(targetUserID, typerName string) error {
	return c.Emit(events.TypingStart, events.TypingStartPayload{TargetUserID: targetUserID, TyperName: typerName})
}

func (c *Client) StopTyping(targetUserID string) error {
	return c.Emit(events.TypingStop, events.TypingStopPayload{TargetUserID: targetUserID})
}

func (c *Client) RequestConnection(targetUserID string, requester events.Party) error {
	return c.Emit(events.RequestConnection, events.RequestConnectionPayload{TargetUserID: targetUserID, Requester: requester})
}

func (c *Client) AcceptConnection(targetUserID string, accepter events.Party) error {
	return c.Emit(events.AcceptConnection, events.AcceptConnectionPayload{TargetUserID: targetUserID, Accepter: accepter})
}

func (c *Client) EndChat(targetUserID, endedBy string) error {
	return c.Emit(events.EndChat, events.EndChatPayload{TargetUserID: targetUserID, EndedBy: endedBy})
}

// Close sends a close frame and tears the connection down.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// Err reports why the read loop stopped.
func (c *Client) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	if c.err == nil {
		return ErrClosed
	}
	return c.err
}

func (c *Client) setErr(err error) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	c.err = err
}
