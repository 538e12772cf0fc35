package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"login-api/internal/platform/persistence"
)

func newRedisRepositoryTest(t *testing.T) (*RedisRepository, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "miniredis start")
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return NewRedisRepository(rdb), mr
}

func TestRedisRepository_Lifecycle(t *testing.T) {
	repo, _ := newRedisRepositoryTest(t)
	ctx := context.Background()

	s, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, s, "no session before first write")

	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Millisecond)
	require.NoError(t, repo.Upsert(ctx, "alice", "h1", exp))

	s, err = repo.Get(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "h1", s.RefreshTokenHash)
	assert.Equal(t, int64(1), s.Version)
	require.NotNil(t, s.RefreshTokenExpiry)
	assert.True(t, s.RefreshTokenExpiry.Equal(exp))
	created := s.CreatedAt

	require.NoError(t, repo.Upsert(ctx, "alice", "h2", exp.Add(time.Minute)))
	s, err = repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h2", s.RefreshTokenHash)
	assert.Equal(t, int64(2), s.Version)
	assert.True(t, s.CreatedAt.Equal(created), "created_at survives overwrite")

	ok, err := repo.Clear(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
	s, err = repo.Get(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, s, "record is kept after clear")
	assert.Empty(t, s.RefreshTokenHash)
	assert.Nil(t, s.RefreshTokenExpiry)
}

func TestRedisRepository_ClearMissing(t *testing.T) {
	repo, _ := newRedisRepositoryTest(t)
	ok, err := repo.Clear(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisRepository_CompareAndSwap(t *testing.T) {
	repo, _ := newRedisRepositoryTest(t)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	ok, err := repo.CompareAndSwap(ctx, "alice", 1, "h", exp)
	require.NoError(t, err)
	assert.False(t, ok, "swap on missing session")

	require.NoError(t, repo.Upsert(ctx, "alice", "h1", exp))
	ok, err = repo.CompareAndSwap(ctx, "alice", 1, "h2", exp)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.CompareAndSwap(ctx, "alice", 1, "h3", exp)
	require.NoError(t, err)
	assert.False(t, ok, "stale version must lose")

	s, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h2", s.RefreshTokenHash)
}

func TestRedisRepository_ConcurrentUpsertNeverTears(t *testing.T) {
	repo, _ := newRedisRepositoryTest(t)
	ctx := context.Background()
	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	pairs := map[string]time.Time{}
	for i := range 8 {
		pairs[string(rune('a'+i))] = base.Add(time.Duration(i) * time.Minute)
	}

	var wg sync.WaitGroup
	for h, exp := range pairs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Upsert(ctx, "alice", h, exp))
		}()
	}
	wg.Wait()

	s, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	want, ok := pairs[s.RefreshTokenHash]
	require.True(t, ok, "final hash %q was never written", s.RefreshTokenHash)
	assert.True(t, s.RefreshTokenExpiry.Equal(want), "hash and expiry come from different writes")
	assert.Equal(t, int64(len(pairs)), s.Version)
}

func TestRedisRepository_Unavailable(t *testing.T) {
	repo, mr := newRedisRepositoryTest(t)
	mr.Close()
	ctx := context.Background()

	_, err := repo.Get(ctx, "alice")
	assert.True(t, errors.Is(err, persistence.ErrUnavailable), "Get: %v", err)
	err = repo.Upsert(ctx, "alice", "h", time.Now())
	assert.True(t, errors.Is(err, persistence.ErrUnavailable), "Upsert: %v", err)
	_, err = repo.Clear(ctx, "alice")
	assert.True(t, errors.Is(err, persistence.ErrUnavailable), "Clear: %v", err)
}
