package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps drafts as JSON documents in Redis.
type Store struct {
	client *redis.Client
	prefix string
}

// NewStore constructs a Redis backed draft store.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client, prefix: "minimarket:draft"}
}

func (s *Store) key(id string) string {
	return fmt.Sprintf("%s:%s", s.prefix, id)
}

func (s *Store) processingKey(id string) string {
	return fmt.Sprintf("%s:%s:processing", s.prefix, id)
}

// Save writes the draft and refreshes its expiry.
func (s *Store) Save(ctx context.Context, d Draft, ttl time.Duration) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return s.client.Set(ctx, s.key(d.ID), payload, ttl).Err()
}

// Load reads a draft. Missing or expired drafts return ErrNotFound.
func (s *Store) Load(ctx context.Context, id string) (Draft, error) {
	payload, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Draft{}, ErrNotFound
	}
	if err != nil {
		return Draft{}, err
	}
	var d Draft
	if err := json.Unmarshal(payload, &d); err != nil {
		return Draft{}, fmt.Errorf("decode draft %s: %w", id, err)
	}
	return d, nil
}

// Delete removes the draft and any processing flag.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id), s.processingKey(id)).Err()
}

// Acquire sets the processing flag. It reports false when another submit holds it.
func (s *Store) Acquire(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, s.processingKey(id), time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
}

// Release clears the processing flag.
func (s *Store) Release(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.processingKey(id)).Err()
}
