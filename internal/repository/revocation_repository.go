package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const revocationKeyPrefix = "coop-scheduler:auth:revoked:"

// RedisRevocationStore records per-user logout timestamps so refresh tokens minted before a
// logout can be refused.
type RedisRevocationStore struct {
	client *redis.Client
}

// NewRedisRevocationStore wraps a go-redis client.
func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

// RevokeUser marks every token of userID issued at or before at as revoked. The key expires
// with ttl, which should be the refresh token lifetime.
func (s *RedisRevocationStore) RevokeUser(ctx context.Context, userID string, at time.Time, ttl time.Duration) error {
	return s.client.Set(ctx, revocationKey(userID), strconv.FormatInt(at.Unix(), 10), ttl).Err()
}

// RevokedAt returns the last revocation time of userID, if any.
func (s *RedisRevocationStore) RevokedAt(ctx context.Context, userID string) (time.Time, bool, error) {
	val, err := s.client.Get(ctx, revocationKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	sec, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(sec, 0), true, nil
}

func revocationKey(userID string) string {
	return revocationKeyPrefix + userID
}
