package kvstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// keyspace namespaces every stored key so the store can share a Redis
// instance with other uses (streams, caches) without colliding.
const keyspace = "kv:"

// RedisStore implements Store on a Redis instance.
// We use a single shared client to reuse connection pooling.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Store backed by the Redis at redisURL.
// URL format: redis://[:password@]host:port[/db]
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &RedisStore{client: redis.NewClient(opts)}, nil
}

// NewRedisStoreFromClient wraps an existing client, sharing its pool.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Client exposes the underlying client so the queue can share the connection.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Ping verifies the connection. Call at startup to fail fast.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, keyspace+key).Bytes()
	if err == redis.Nil {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, keyspace+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyspace+key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

// List walks the keyspace with SCAN MATCH and fetches each value. Linear in
// the total key count, matching the store contract.
func (s *RedisStore) List(ctx context.Context, prefix string) ([]Entry, error) {
	var entries []Entry
	var cursor uint64

	for {
		keys, next, err := s.client.Scan(ctx, cursor, keyspace+prefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("redis scan %q: %w", prefix, err)
		}

		for _, fullKey := range keys {
			value, err := s.client.Get(ctx, fullKey).Bytes()
			if err == redis.Nil {
				// Deleted between SCAN and GET; skip it.
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("redis get %q: %w", fullKey, err)
			}
			entries = append(entries, Entry{
				Key:   fullKey[len(keyspace):],
				Value: value,
			})
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}
	return entries, nil
}
