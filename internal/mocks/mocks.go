package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"campus-messaging/internal/models"
	"campus-messaging/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID string) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) PushPendingRequest(ctx context.Context, userID string, req models.PendingRequest) error {
	args := m.Called(ctx, userID, req)
	return args.Error(0)
}

func (m *UserRepositoryMock) PullPendingRequests(ctx context.Context, userID string, requesterID string) (int64, error) {
	args := m.Called(ctx, userID, requesterID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserRepositoryMock) ListPendingRequests(ctx context.Context, userID string) ([]models.ResolvedRequest, error) {
	args := m.Called(ctx, userID)
	var list []models.ResolvedRequest
	if val := args.Get(0); val != nil {
		list = val.([]models.ResolvedRequest)
	}
	return list, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, msg models.PrivateMessage) (models.PrivateMessage, error) {
	args := m.Called(ctx, msg)
	var created models.PrivateMessage
	switch val := args.Get(0).(type) {
	case func(context.Context, models.PrivateMessage) models.PrivateMessage:
		created = val(ctx, msg)
	case models.PrivateMessage:
		created = val
	}
	return created, args.Error(1)
}

func (m *MessageRepositoryMock) ListConversation(ctx context.Context, userID string, otherUserID string) ([]models.PrivateMessage, error) {
	args := m.Called(ctx, userID, otherUserID)
	var msgs []models.PrivateMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.PrivateMessage)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) DeleteConversation(ctx context.Context, userID string, otherUserID string) (int64, error) {
	args := m.Called(ctx, userID, otherUserID)
	return args.Get(0).(int64), args.Error(1)
}

type NotificationRepositoryMock struct {
	mock.Mock
}

func (m *NotificationRepositoryMock) CreateNotification(ctx context.Context, n models.Notification) (models.Notification, error) {
	args := m.Called(ctx, n)
	var created models.Notification
	if val := args.Get(0); val != nil {
		created = val.(models.Notification)
	}
	return created, args.Error(1)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.NotificationRepository = (*NotificationRepositoryMock)(nil)
