package credstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	credentialKeySuffix = ":credential"
	usernameKeySuffix   = ":username"
	defaultKeyPrefix    = "passwallet:profile"
)

// RedisStore keeps the credential pair in Redis, for running the demo
// against shared infrastructure instead of the local filesystem. Both keys
// are written and deleted inside one transactional pipeline so the pair
// stays coupled.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore builds a Redis-backed store. An empty prefix falls back to
// the default profile namespace.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) credentialKey() string { return s.prefix + credentialKeySuffix }
func (s *RedisStore) usernameKey() string   { return s.prefix + usernameKeySuffix }

// Get fetches both keys in a single round trip.
func (s *RedisStore) Get(ctx context.Context) ([]byte, string, bool, error) {
	values, err := s.client.MGet(ctx, s.credentialKey(), s.usernameKey()).Result()
	if err != nil {
		return nil, "", false, fmt.Errorf("read profile keys: %w", err)
	}

	credential, _ := values[0].(string)
	if credential == "" {
		return nil, "", false, nil
	}
	username, _ := values[1].(string)
	return []byte(credential), username, true, nil
}

// Put writes both keys atomically. A profile without a username has the
// username key removed rather than left stale.
func (s *RedisStore) Put(ctx context.Context, credential []byte, username string) error {
	if len(credential) == 0 {
		return fmt.Errorf("credential payload is required")
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.credentialKey(), credential, 0)
		if username != "" {
			pipe.Set(ctx, s.usernameKey(), username, 0)
		} else {
			pipe.Del(ctx, s.usernameKey())
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write profile keys: %w", err)
	}
	return nil
}

// Clear deletes both keys unconditionally.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.credentialKey(), s.usernameKey()).Err(); err != nil {
		return fmt.Errorf("clear profile keys: %w", err)
	}
	return nil
}
