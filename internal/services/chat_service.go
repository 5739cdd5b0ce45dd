package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"campus-messaging/internal/events"
	"campus-messaging/internal/models"
	"campus-messaging/internal/repositories"
)

// ChatService persists direct messages and pushes them to the rooms of both
// parties.
type ChatService struct {
	messages repositories.MessageRepository
	users    repositories.UserRepository
	pub      events.Publisher
	log      zerolog.Logger
	now      func() time.Time
}

func NewChatService(messages repositories.MessageRepository, users repositories.UserRepository, pub events.Publisher, log zerolog.Logger) *ChatService {
	return &ChatService{
		messages: messages,
		users:    users,
		pub:      pub,
		log:      log,
		now:      time.Now,
	}
}

// SendMessage stores the message and then delivers it live. Delivery is best
// effort: once the row is stored the message is returned whatever happens
// to the realtime push.
func (s *ChatService) SendMessage(ctx context.Context, senderID, recipientID, content string) (models.PrivateMessage, error) {
	msg, err := s.messages.CreateMessage(ctx, models.PrivateMessage{
		ID:        uuid.NewString(),
		Sender:    senderID,
		Recipient: recipientID,
		Content:   content,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return models.PrivateMessage{}, err
	}

	s.deliver(ctx, msg)
	return msg, nil
}

func (s *ChatService) deliver(ctx context.Context, msg models.PrivateMessage) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("message_id", msg.ID).Msg("private message delivery failed")
		}
	}()

	var senderName string
	if sender, err := s.users.GetUser(ctx, msg.Sender); err == nil {
		senderName = sender.Username
	} else {
		s.log.Warn().Err(err).Str("user_id", msg.Sender).Msg("sender lookup failed")
	}

	s.pub.Publish(events.UserRoom(msg.Recipient), events.ReceivePrivateMessage, events.DeliveredMessage{
		PrivateMessage: msg,
		SenderName:     senderName,
	})
	s.pub.Publish(events.UserRoom(msg.Sender), events.MessageSentConfirmation, msg)
}

// GetHistory returns the whole conversation between myID and otherID,
// oldest first.
func (s *ChatService) GetHistory(ctx context.Context, myID, otherID string) ([]models.PrivateMessage, error) {
	return s.messages.ListConversation(ctx, myID, otherID)
}

// DeleteConversation wipes the conversation in both directions. The peer is
// not notified; that is what end_chat is for.
func (s *ChatService) DeleteConversation(ctx context.Context, myID, targetID string) (int64, error) {
	return s.messages.DeleteConversation(ctx, myID, targetID)
}
