package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"campus-messaging/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository covers the user fields the messaging core reads and the
// pending-request list it mutates.
type UserRepository interface {
	GetUser(ctx context.Context, userID string) (models.User, error)
	PushPendingRequest(ctx context.Context, userID string, req models.PendingRequest) error
	PullPendingRequests(ctx context.Context, userID string, requesterID string) (int64, error)
	ListPendingRequests(ctx context.Context, userID string) ([]models.ResolvedRequest, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetUser fetches a user by id.
func (r *UserRepo) GetUser(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT id, username, email, created_at FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// PushPendingRequest appends a pending request in a single statement. There
// is deliberately no uniqueness check on the requester.
func (r *UserRepo) PushPendingRequest(ctx context.Context, userID string, req models.PendingRequest) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO pending_requests (user_id, requester_id, username, created_at)
        SELECT $1, $2, $3, $4 WHERE EXISTS (SELECT 1 FROM users WHERE id=$1)`,
		userID, req.RequesterID, req.Username, req.Timestamp)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}

// PullPendingRequests removes every pending entry of requesterID.
func (r *UserRepo) PullPendingRequests(ctx context.Context, userID string, requesterID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pending_requests WHERE user_id=$1 AND requester_id=$2`, userID, requesterID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListPendingRequests returns pending entries with the requester's profile
// resolved, oldest first.
func (r *UserRepo) ListPendingRequests(ctx context.Context, userID string) ([]models.ResolvedRequest, error) {
	query := `SELECT pr.requester_id, COALESCE(u.username, pr.username) AS username, COALESCE(u.email, '') AS email, pr.created_at
        FROM pending_requests pr
        LEFT JOIN users u ON u.id = pr.requester_id
        WHERE pr.user_id=$1
        ORDER BY pr.created_at ASC, pr.id ASC`
	reqs := []models.ResolvedRequest{}
	err := r.db.SelectContext(ctx, &reqs, query, userID)
	return reqs, err
}
