package todo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestRedisListCache_MissThenHit(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewRedisListCache(client, time.Minute)
	ctx := context.Background()
	owner := uuid.New()

	_, gen, hit, err := cache.Get(ctx, owner)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, int64(0), gen)

	want := []Todo{{ID: uuid.New(), OwnerID: owner, Content: "cached", CreatedAt: time.Now().UTC().Truncate(time.Second)}}
	require.NoError(t, cache.Set(ctx, owner, gen, want))

	got, gen2, hit, err := cache.Get(ctx, owner)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, gen, gen2)
	require.Len(t, got, 1)
	assert.Equal(t, want[0].ID, got[0].ID)
	assert.Equal(t, "cached", got[0].Content)
}

func TestRedisListCache_EmptyListIsAHit(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewRedisListCache(client, time.Minute)
	owner := uuid.New()

	require.NoError(t, cache.Set(context.Background(), owner, 0, []Todo{}))

	got, _, hit, err := cache.Get(context.Background(), owner)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRedisListCache_InvalidateBumpsGeneration(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRedisListCache(client, time.Minute)
	ctx := context.Background()
	owner := uuid.New()

	require.NoError(t, cache.Set(ctx, owner, 0, []Todo{{Content: "old"}}))
	require.NoError(t, cache.Invalidate(ctx, owner))

	_, gen, hit, err := cache.Get(ctx, owner)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, int64(1), gen)
	assert.False(t, mr.Exists(getListKey(owner, 0)), "superseded list is dropped")
}

func TestRedisListCache_StaleFillIsInvisible(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewRedisListCache(client, time.Minute)
	ctx := context.Background()
	owner := uuid.New()

	// reader observes generation 0, then a writer commits and invalidates
	_, readerGen, _, err := cache.Get(ctx, owner)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx, owner))

	// the reader's late fill lands under the old generation
	require.NoError(t, cache.Set(ctx, owner, readerGen, []Todo{{Content: "stale"}}))

	_, _, hit, err := cache.Get(ctx, owner)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisListCache_TTL(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRedisListCache(client, 30*time.Second)
	owner := uuid.New()

	require.NoError(t, cache.Set(context.Background(), owner, 0, []Todo{{Content: "x"}}))
	assert.Equal(t, 30*time.Second, mr.TTL(getListKey(owner, 0)))

	mr.FastForward(31 * time.Second)

	_, _, hit, err := cache.Get(context.Background(), owner)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisListCache_OwnersAreSeparate(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewRedisListCache(client, time.Minute)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	require.NoError(t, cache.Set(ctx, alice, 0, []Todo{{Content: "alice"}}))

	_, _, hit, err := cache.Get(ctx, bob)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisListCache_ServerDown(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRedisListCache(client, time.Minute)
	mr.Close()

	_, _, _, err := cache.Get(context.Background(), uuid.New())
	assert.Error(t, err)
}
