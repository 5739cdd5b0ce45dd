package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"campus-messaging/internal/models"
)

// ErrInvalidNotificationType rejects a notification outside the known types.
var ErrInvalidNotificationType = errors.New("invalid notification type")

// NotificationRepository persists user notifications.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n models.Notification) (models.Notification, error)
}

// NotificationRepo is a sqlx implementation of NotificationRepository.
type NotificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepo constructs a NotificationRepo.
func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// CreateNotification inserts a notification.
func (r *NotificationRepo) CreateNotification(ctx context.Context, n models.Notification) (models.Notification, error) {
	if !n.Type.Valid() {
		return models.Notification{}, fmt.Errorf("%w: %q", ErrInvalidNotificationType, n.Type)
	}
	var stored models.Notification
	err := r.db.QueryRowxContext(ctx, `INSERT INTO notifications (id, user_id, title, message, type, link, read, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, user_id, title, message, type, link, read, created_at, updated_at`,
		n.ID, n.UserID, n.Title, n.Message, n.Type, n.Link, n.Read, n.CreatedAt, n.UpdatedAt).
		StructScan(&stored)
	return stored, err
}
