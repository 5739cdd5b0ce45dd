package models

import "time"

// User is the slice of the campus profile the messaging service needs.
type User struct {
	ID        string    `db:"id" json:"_id"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// PendingRequest is one entry of a user's pending connection requests.
type PendingRequest struct {
	RequesterID string    `db:"requester_id" json:"requesterId"`
	Username    string    `db:"username" json:"username"`
	Timestamp   time.Time `db:"created_at" json:"timestamp"`
}

// ResolvedRequest is a pending request joined with the requester's profile.
type ResolvedRequest struct {
	RequesterID string    `db:"requester_id" json:"requesterId"`
	Username    string    `db:"username" json:"username"`
	Email       string    `db:"email" json:"email"`
	Timestamp   time.Time `db:"created_at" json:"timestamp"`
}
