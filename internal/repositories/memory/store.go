// Package memory keeps users, pending requests, private messages and
// notifications in process memory. It backs STORE_DRIVER=memory and the
// service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"campus-messaging/internal/models"
	"campus-messaging/internal/repositories"
)

// Store implements the user, message and notification repositories.
type Store struct {
	mu            sync.RWMutex
	users         map[string]models.User
	pending       map[string][]models.PendingRequest // userID -> pending list
	messages      []models.PrivateMessage
	notifications map[string][]models.Notification // userID -> notifications
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:         make(map[string]models.User),
		pending:       make(map[string][]models.PendingRequest),
		notifications: make(map[string][]models.Notification),
	}
}

// PutUser inserts or replaces a user.
func (s *Store) PutUser(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
}

func (s *Store) GetUser(ctx context.Context, userID string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return models.User{}, repositories.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) PushPendingRequest(ctx context.Context, userID string, req models.PendingRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return repositories.ErrUserNotFound
	}
	s.pending[userID] = append(s.pending[userID], req)
	return nil
}

func (s *Store) PullPendingRequests(ctx context.Context, userID string, requesterID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.pending[userID]
	kept := list[:0]
	var removed int64
	for _, req := range list {
		if req.RequesterID == requesterID {
			removed++
			continue
		}
		kept = append(kept, req)
	}
	s.pending[userID] = kept
	return removed, nil
}

func (s *Store) ListPendingRequests(ctx context.Context, userID string) ([]models.ResolvedRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resolved := make([]models.ResolvedRequest, 0, len(s.pending[userID]))
	for _, req := range s.pending[userID] {
		r := models.ResolvedRequest{RequesterID: req.RequesterID, Username: req.Username, Timestamp: req.Timestamp}
		if u, ok := s.users[req.RequesterID]; ok {
			r.Username = u.Username
			r.Email = u.Email
		}
		resolved = append(resolved, r)
	}
	return resolved, nil
}

func (s *Store) CreateMessage(ctx context.Context, msg models.PrivateMessage) (models.PrivateMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *Store) ListConversation(ctx context.Context, userID string, otherUserID string) ([]models.PrivateMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := []models.PrivateMessage{}
	for _, m := range s.messages {
		if isPair(m, userID, otherUserID) {
			msgs = append(msgs, m)
		}
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return msgs, nil
}

func (s *Store) DeleteConversation(ctx context.Context, userID string, otherUserID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.messages[:0]
	var removed int64
	for _, m := range s.messages {
		if isPair(m, userID, otherUserID) {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	s.messages = kept
	return removed, nil
}

func (s *Store) CreateNotification(ctx context.Context, n models.Notification) (models.Notification, error) {
	if !n.Type.Valid() {
		return models.Notification{}, fmt.Errorf("%w: %q", repositories.ErrInvalidNotificationType, n.Type)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.UserID] = append(s.notifications[n.UserID], n)
	return n, nil
}

// Notifications returns a copy of the user's notifications.
func (s *Store) Notifications(userID string) []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Notification, len(s.notifications[userID]))
	copy(out, s.notifications[userID])
	return out
}

func isPair(m models.PrivateMessage, a, b string) bool {
	return (m.Sender == a && m.Recipient == b) || (m.Sender == b && m.Recipient == a)
}

var (
	_ repositories.UserRepository         = (*Store)(nil)
	_ repositories.MessageRepository      = (*Store)(nil)
	_ repositories.NotificationRepository = (*Store)(nil)
)
