package models

import "time"

type NotificationType string

const (
	NotificationInfo         NotificationType = "info"
	NotificationAlert        NotificationType = "alert"
	NotificationCancellation NotificationType = "cancellation"
	NotificationSuccess      NotificationType = "success"
	NotificationAssignment   NotificationType = "assignment"
	NotificationExam         NotificationType = "exam"
	NotificationSystem       NotificationType = "system"
)

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInfo, NotificationAlert, NotificationCancellation, NotificationSuccess,
		NotificationAssignment, NotificationExam, NotificationSystem:
		return true
	}
	return false
}

// Notification is a fire-and-forget record surfaced to one user.
type Notification struct {
	ID        string           `db:"id" json:"_id"`
	UserID    string           `db:"user_id" json:"user"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Type      NotificationType `db:"type" json:"type"`
	Link      *string          `db:"link" json:"link,omitempty"`
	Read      bool             `db:"read" json:"read"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time        `db:"updated_at" json:"updatedAt"`
}
