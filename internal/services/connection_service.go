package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"campus-messaging/internal/events"
	"campus-messaging/internal/models"
	"campus-messaging/internal/repositories"
)

const (
	requestNotificationTitle = "New Connection Request"
	requestNotificationLink  = "/community"
)

// ConnectionService runs the connection-request workflow. Requests live on
// the target's pending list; accepting or rejecting removes them. No
// friendship record is kept.
type ConnectionService struct {
	users         repositories.UserRepository
	notifications repositories.NotificationRepository
	pub           events.Publisher
	log           zerolog.Logger
	now           func() time.Time
}

func NewConnectionService(users repositories.UserRepository, notifications repositories.NotificationRepository, pub events.Publisher, log zerolog.Logger) *ConnectionService {
	return &ConnectionService{
		users:         users,
		notifications: notifications,
		pub:           pub,
		log:           log,
		now:           time.Now,
	}
}

// SendConnectionRequest appends the request to the target's pending list,
// records a notification and pings the target. Repeated calls stack
// duplicate entries.
func (s *ConnectionService) SendConnectionRequest(ctx context.Context, targetID, requesterID, requesterName string) error {
	now := s.now().UTC()
	if err := s.users.PushPendingRequest(ctx, targetID, models.PendingRequest{
		RequesterID: requesterID,
		Username:    requesterName,
		Timestamp:   now,
	}); err != nil {
		return err
	}

	link := requestNotificationLink
	if _, err := s.notifications.CreateNotification(ctx, models.Notification{
		ID:        uuid.NewString(),
		UserID:    targetID,
		Title:     requestNotificationTitle,
		Message:   fmt.Sprintf("%s wants to connect with you.", requesterName),
		Type:      models.NotificationInfo,
		Link:      &link,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return err
	}

	s.notify(func() {
		events.NotifyIncomingRequest(s.pub, targetID, events.Party{ID: requesterID, Username: requesterName})
		events.NotifyNewNotification(s.pub, targetID)
	})
	return nil
}

// AcceptConnectionRequest removes every pending entry of requesterID and
// tells the requester.
func (s *ConnectionService) AcceptConnectionRequest(ctx context.Context, userID, requesterID string) error {
	if _, err := s.users.PullPendingRequests(ctx, userID, requesterID); err != nil {
		return err
	}

	var name string
	if user, err := s.users.GetUser(ctx, userID); err == nil {
		name = user.Username
	} else {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("accepter lookup failed")
	}

	s.notify(func() {
		events.NotifyRequestAccepted(s.pub, requesterID, events.AcceptedPayload{
			AcceptingUserID:   userID,
			AcceptingUserName: name,
		})
	})
	return nil
}

// RejectConnectionRequest removes the entries silently.
func (s *ConnectionService) RejectConnectionRequest(ctx context.Context, userID, requesterID string) error {
	_, err := s.users.PullPendingRequests(ctx, userID, requesterID)
	return err
}

func (s *ConnectionService) GetPendingRequests(ctx context.Context, userID string) ([]models.ResolvedRequest, error) {
	return s.users.ListPendingRequests(ctx, userID)
}

func (s *ConnectionService) notify(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("connection request notify failed")
		}
	}()
	fn()
}
