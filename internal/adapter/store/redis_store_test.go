package store

import (
	"context"
	"os"
	"testing"
	"time"

	"adforge/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx := context.Background()
	require.NoError(t, rdb.Ping(ctx).Err())

	prefix := "adforge-test-" + uuid.NewString()
	t.Cleanup(func() {
		keys, _ := rdb.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			rdb.Del(ctx, keys...)
		}
		_ = rdb.Close()
	})
	return NewRedisStore(rdb, prefix)
}

func TestRedisStoreLifecycle(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ids := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}
	for i, id := range ids {
		require.NoError(t, s.Save(ctx, sampleRecord(id, "owner-1", base.Add(time.Duration(i)*time.Minute))))
	}

	got, err := s.Get(ctx, "owner-1", ids[1])
	require.NoError(t, err)
	assert.Equal(t, "B2B SaaS", got.UserContext.BusinessDescription)
	assert.Len(t, got.Advisories, 1)

	list, err := s.List(ctx, "owner-1", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[1], list[1].ID)

	_, err = s.Get(ctx, "owner-2", ids[1])
	assert.ErrorIs(t, err, entity.ErrResourceNotFound)

	require.NoError(t, s.Delete(ctx, "owner-1", ids[1]))
	assert.ErrorIs(t, s.Delete(ctx, "owner-1", ids[1]), entity.ErrResourceNotFound)

	list, err = s.List(ctx, "owner-1", 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestRedisStoreColonOwnersStayApart(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()
	id := uuid.NewString()
	require.NoError(t, s.Save(ctx, sampleRecord(id, "user:123", time.Now().UTC())))

	// "user" must not reach "user:123"'s record by smuggling the suffix into the id.
	_, err := s.Get(ctx, "user", "123:"+id)
	assert.ErrorIs(t, err, entity.ErrResourceNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "user", "123:"+id), entity.ErrResourceNotFound)

	got, err := s.Get(ctx, "user:123", id)
	require.NoError(t, err)
	assert.Equal(t, "user:123", got.OwnerID)
}

func TestRedisStoreRejectsNonUUIDIDs(t *testing.T) {
	// Nothing listens here: rejected ids must never reach the network.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	s := NewRedisStore(rdb, "adforge")
	ctx := context.Background()
	id := uuid.NewString()

	for _, bad := range []string{
		"123:abc",
		"123:" + id,
		"urn:uuid:" + id,
		"{" + id + "}",
		"",
	} {
		_, err := s.Get(ctx, "user", bad)
		assert.ErrorIs(t, err, entity.ErrResourceNotFound, bad)
		assert.ErrorIs(t, s.Delete(ctx, "user", bad), entity.ErrResourceNotFound, bad)
		assert.Error(t, s.Save(ctx, sampleRecord(bad, "user", time.Now().UTC())), bad)
	}

	assert.True(t, validID(id))
	assert.NotEqual(t, s.recordKey("user", id), s.recordKey("user:123", id))
}
