package presence

import (
	"context"
	"sort"
	"sync"
)

// MemoryRegistry keeps presence in process memory; a restart forgets everyone.
type MemoryRegistry struct {
	mu     sync.RWMutex
	online map[string]string // userID -> connID
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{online: make(map[string]string)}
}

func (r *MemoryRegistry) Register(_ context.Context, userID, connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.online[userID] = connID
	return nil
}

func (r *MemoryRegistry) Unregister(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.online, userID)
	return nil
}

// ListOnline returns a sorted snapshot of online user ids.
func (r *MemoryRegistry) ListOnline(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]string, 0, len(r.online))
	for userID := range r.online {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users, nil
}

// ConnID returns the connection registered for userID.
func (r *MemoryRegistry) ConnID(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.online[userID]
	return connID, ok
}
