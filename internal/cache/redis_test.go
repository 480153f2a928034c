package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/nexus/internal/config"
	"github.com/magabrotheeeer/nexus/internal/models"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestSetAndGet(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	trialEnd := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	expected := models.Subscription{
		ID:           1,
		GroupID:      10,
		Status:       models.StatusTrial,
		TrialEndDate: &trialEnd,
		Price:        49900,
		Currency:     "INR",
		OwnerAuthID:  "auth|1",
	}
	require.NoError(t, cache.Set(ctx, "subscription:group:10", expected, time.Minute))

	var actual models.Subscription
	found, err := cache.Get(ctx, "subscription:group:10", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected.GroupID, actual.GroupID)
	assert.Equal(t, expected.Price, actual.Price)
	assert.True(t, expected.TrialEndDate.Equal(*actual.TrialEndDate))
}

func TestGetNotFound(t *testing.T) {
	cache, _ := setupTestCache(t)

	var out models.Subscription
	found, err := cache.Get(context.Background(), "no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSet_Expires(t *testing.T) {
	cache, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", "value", time.Minute))
	mr.FastForward(2 * time.Minute)

	var out string
	found, err := cache.Get(ctx, "key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", "value", time.Minute))
	require.NoError(t, cache.Invalidate(ctx, "key"))

	var out string
	found, err := cache.Get(ctx, "key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetInvalidJSON(t *testing.T) {
	cache, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Db.Set(ctx, "bad", []byte("not-json"), time.Minute).Err())

	var out models.Subscription
	found, err := cache.Get(ctx, "bad", &out)
	require.Error(t, err)
	assert.False(t, found)
}

func TestSet_MarshalError(t *testing.T) {
	cache, _ := setupTestCache(t)

	err := cache.Set(context.Background(), "ch", make(chan int), time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.Set")
}

func TestInitServer_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = InitServer(context.Background(), config.RedisConnection{AddressRedis: addr, DialTimeout: 100 * time.Millisecond})
	require.Error(t, err)
}
