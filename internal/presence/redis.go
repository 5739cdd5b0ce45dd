package presence

import (
	"context"
	"sort"

	"github.com/redis/go-redis/v9"
)

// RedisRegistry stores presence in a Redis hash so several processes can
// share one view. Event delivery stays process-local.
type RedisRegistry struct {
	client redis.Cmdable
	key    string
}

// NewRedisRegistry builds a registry over the hash at key.
func NewRedisRegistry(client redis.Cmdable, key string) *RedisRegistry {
	return &RedisRegistry{client: client, key: key}
}

func (r *RedisRegistry) Register(ctx context.Context, userID, connID string) error {
	return r.client.HSet(ctx, r.key, userID, connID).Err()
}

func (r *RedisRegistry) Unregister(ctx context.Context, userID string) error {
	return r.client.HDel(ctx, r.key, userID).Err()
}

func (r *RedisRegistry) ListOnline(ctx context.Context) ([]string, error) {
	users, err := r.client.HKeys(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(users)
	return users, nil
}
