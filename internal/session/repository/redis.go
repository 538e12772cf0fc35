package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"login-api/internal/platform/persistence"
	"login-api/internal/session/domain"
)

const (
	fieldHash      = "hash"
	fieldExpiry    = "expiry"
	fieldVersion   = "version"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
)

// KEYS[1] session key; ARGV hash, expiry, now.
var upsertSessionLua = redis.NewScript(`
redis.call("HSETNX", KEYS[1], "created_at", ARGV[3])
redis.call("HSET", KEYS[1], "hash", ARGV[1], "expiry", ARGV[2], "updated_at", ARGV[3])
return redis.call("HINCRBY", KEYS[1], "version", 1)
`)

// KEYS[1] session key; ARGV expected version, hash, expiry, now.
var rotateSessionLua = redis.NewScript(`
local current = redis.call("HGET", KEYS[1], "version")
if not current or current ~= ARGV[1] then
  return 0
end
redis.call("HSET", KEYS[1], "hash", ARGV[2], "expiry", ARGV[3], "updated_at", ARGV[4])
redis.call("HINCRBY", KEYS[1], "version", 1)
return 1
`)

// KEYS[1] session key; ARGV now.
var clearSessionLua = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], "hash", "", "expiry", "", "updated_at", ARGV[1])
redis.call("HINCRBY", KEYS[1], "version", 1)
return 1
`)

// RedisRepository stores each session as a hash at token_session:<username>.
// Every mutation is a single Lua script so hash and expiry change together.
type RedisRepository struct {
	rdb    redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisRepository returns a session repository backed by rdb.
func NewRedisRepository(rdb redis.UniversalClient) *RedisRepository {
	return &RedisRepository{rdb: rdb, prefix: "token_session:", now: func() time.Time { return time.Now().UTC() }}
}

func (r *RedisRepository) key(username string) string {
	return r.prefix + username
}

// Get returns the session for username, or nil if the key does not exist.
func (r *RedisRepository) Get(ctx context.Context, username string) (*domain.TokenSession, error) {
	vals, err := r.rdb.HGetAll(ctx, r.key(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, persistence.Wrap("token session get", err)
	}
	if len(vals) == 0 {
		return nil, nil
	}
	s, err := decodeSession(username, vals)
	if err != nil {
		return nil, persistence.Wrap("token session decode", err)
	}
	return s, nil
}

// Upsert creates or overwrites the session hash in one script and bumps its version.
func (r *RedisRepository) Upsert(ctx context.Context, username, refreshTokenHash string, expiry time.Time) error {
	err := upsertSessionLua.Run(ctx, r.rdb, []string{r.key(username)},
		refreshTokenHash, formatTime(expiry), formatTime(r.now())).Err()
	return persistence.Wrap("token session upsert", err)
}

// CompareAndSwap writes only if the stored version equals version.
func (r *RedisRepository) CompareAndSwap(ctx context.Context, username string, version int64, refreshTokenHash string, expiry time.Time) (bool, error) {
	n, err := rotateSessionLua.Run(ctx, r.rdb, []string{r.key(username)},
		strconv.FormatInt(version, 10), refreshTokenHash, formatTime(expiry), formatTime(r.now())).Int64()
	if err != nil {
		return false, persistence.Wrap("token session rotate", err)
	}
	return n == 1, nil
}

// Clear nulls the refresh fields of an existing session hash; false when the key is absent.
func (r *RedisRepository) Clear(ctx context.Context, username string) (bool, error) {
	n, err := clearSessionLua.Run(ctx, r.rdb, []string{r.key(username)}, formatTime(r.now())).Int64()
	if err != nil {
		return false, persistence.Wrap("token session clear", err)
	}
	return n == 1, nil
}

func decodeSession(username string, vals map[string]string) (*domain.TokenSession, error) {
	s := &domain.TokenSession{Username: username, RefreshTokenHash: vals[fieldHash]}
	var err error
	if v := vals[fieldVersion]; v != "" {
		if s.Version, err = strconv.ParseInt(v, 10, 64); err != nil {
			return nil, fmt.Errorf("version: %w", err)
		}
	}
	if v := vals[fieldExpiry]; v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("expiry: %w", err)
		}
		s.RefreshTokenExpiry = &t
	}
	if v := vals[fieldCreatedAt]; v != "" {
		if s.CreatedAt, err = time.Parse(time.RFC3339Nano, v); err != nil {
			return nil, fmt.Errorf("created_at: %w", err)
		}
	}
	if v := vals[fieldUpdatedAt]; v != "" {
		if s.UpdatedAt, err = time.Parse(time.RFC3339Nano, v); err != nil {
			return nil, fmt.Errorf("updated_at: %w", err)
		}
	}
	return s, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
