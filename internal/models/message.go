package models

import "time"

// PrivateMessage is one direct message. It is never updated after creation.
type PrivateMessage struct {
	ID        string    `db:"id" json:"_id"`
	Sender    string    `db:"sender_id" json:"sender"`
	Recipient string    `db:"recipient_id" json:"recipient"`
	Content   string    `db:"content" json:"content"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
