// Package presence records which users currently hold an open realtime
// connection. It is never consulted before emitting; it only feeds the
// online indicators.
package presence

import "context"

// Registry maps user ids to their active connection id.
type Registry interface {
	Register(ctx context.Context, userID, connID string) error
	Unregister(ctx context.Context, userID string) error
	ListOnline(ctx context.Context) ([]string, error)
}
