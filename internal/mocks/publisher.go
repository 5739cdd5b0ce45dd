package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
)

// PublisherMock stands in for the broker publisher.
type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any, headers map[string]string) error {
	args := m.Called(ctx, routingKey, event, headers)
	return args.Error(0)
}

func (m *PublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Emitted is one realtime event captured by RoomRecorder.
type Emitted struct {
	Room    string
	Event   string
	Payload any
}

// RoomRecorder records realtime publishes in order.
type RoomRecorder struct {
	mu     sync.Mutex
	events []Emitted
}

func (r *RoomRecorder) Publish(room, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Emitted{Room: room, Event: event, Payload: payload})
}

func (r *RoomRecorder) Events() []Emitted {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Emitted(nil), r.events...)
}

// To returns what was published to room, in order.
func (r *RoomRecorder) To(room string) []Emitted {
	var out []Emitted
	for _, e := range r.Events() {
		if e.Room == room {
			out = append(out, e)
		}
	}
	return out
}
