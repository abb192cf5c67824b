package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/haydenflinner/magicinvoke/tasks/fingerprint"
)

// Compile-time check to ensure RedisResultStore implements ResultStore
var _ ResultStore = (*RedisResultStore)(nil)

// RedisResultStore keeps results in Redis so a cache can be shared by several
// hosts. Same contract as the file store: corrupt entries are misses, last
// writer wins.
type RedisResultStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisResultStore connects to Redis and verifies the connection.
func NewRedisResultStore(url string) (*RedisResultStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisResultStore{
		client:    client,
		keyPrefix: "magicinvoke:results",
	}, nil
}

// Load retrieves an entry. Absent keys and undecodable values are misses.
func (s *RedisResultStore) Load(ctx context.Context, identity string, fp fingerprint.Fingerprint) (*Entry, error) {
	data, err := s.client.Get(ctx, s.entryKey(identity, fp)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load result entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, nil
	}
	if entry.Fingerprint != fp {
		return nil, nil
	}

	return &entry, nil
}

// Save stores an entry. Redis SET replaces the whole value, which gives the
// atomic-replacement guarantee for free.
func (s *RedisResultStore) Save(ctx context.Context, identity string, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("result entry is nil")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal result entry: %w", err)
	}

	return s.client.Set(ctx, s.entryKey(identity, entry.Fingerprint), data, 0).Err()
}

// Purge removes every entry stored under the given identity.
func (s *RedisResultStore) Purge(ctx context.Context, identity string) error {
	pattern := fmt.Sprintf("%s:%s:*", s.keyPrefix, identity)

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan result entries: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete result entries: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close cleanly shuts down the Redis connection.
func (s *RedisResultStore) Close() error {
	return s.client.Close()
}

func (s *RedisResultStore) entryKey(identity string, fp fingerprint.Fingerprint) string {
	return fmt.Sprintf("%s:%s:%s", s.keyPrefix, identity, fp)
}
