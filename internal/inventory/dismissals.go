package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DismissalStore remembers per-user widget dismissals in Redis.
type DismissalStore struct {
	client *redis.Client
	prefix string
}

// NewDismissalStore constructs a store.
func NewDismissalStore(client *redis.Client) *DismissalStore {
	return &DismissalStore{client: client, prefix: "minimarket:alerts:dismissed"}
}

func (s *DismissalStore) key(userID int64, kind AlertKind) string {
	return fmt.Sprintf("%s:%s:%d", s.prefix, kind, userID)
}

// Dismiss hides kind for userID until ttl elapses.
func (s *DismissalStore) Dismiss(ctx context.Context, userID int64, kind AlertKind, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(userID, kind), time.Now().UTC().Format(time.RFC3339), ttl).Err()
}

// IsDismissed reports whether kind is currently hidden for userID.
func (s *DismissalStore) IsDismissed(ctx context.Context, userID int64, kind AlertKind) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(userID, kind)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
