package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"campus-messaging/internal/models"
)

// MessageRepository defines persistence of private messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, msg models.PrivateMessage) (models.PrivateMessage, error)
	ListConversation(ctx context.Context, userID string, otherUserID string) ([]models.PrivateMessage, error)
	DeleteConversation(ctx context.Context, userID string, otherUserID string) (int64, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a private message.
func (r *MessageRepo) CreateMessage(ctx context.Context, msg models.PrivateMessage) (models.PrivateMessage, error) {
	var stored models.PrivateMessage
	err := r.db.QueryRowxContext(ctx, `INSERT INTO private_messages (id, sender_id, recipient_id, content, read, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, sender_id, recipient_id, content, read, created_at`,
		msg.ID, msg.Sender, msg.Recipient, msg.Content, msg.Read, msg.CreatedAt).
		StructScan(&stored)
	return stored, err
}

// ListConversation returns every message between the two users, oldest first.
func (r *MessageRepo) ListConversation(ctx context.Context, userID string, otherUserID string) ([]models.PrivateMessage, error) {
	query := `SELECT id, sender_id, recipient_id, content, read, created_at
        FROM private_messages
        WHERE (sender_id=$1 AND recipient_id=$2) OR (sender_id=$2 AND recipient_id=$1)
        ORDER BY created_at ASC`
	msgs := []models.PrivateMessage{}
	err := r.db.SelectContext(ctx, &msgs, query, userID, otherUserID)
	return msgs, err
}

// DeleteConversation removes every message between the two users.
func (r *MessageRepo) DeleteConversation(ctx context.Context, userID string, otherUserID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM private_messages
        WHERE (sender_id=$1 AND recipient_id=$2) OR (sender_id=$2 AND recipient_id=$1)`, userID, otherUserID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
