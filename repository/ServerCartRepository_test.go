package repository

import (
	"context"
	"math"
	"os"
	"testing"

	"guestcart/entities"
	"guestcart/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestServerCartRepo_AddCartItem(t *testing.T) {
	rdb := redisClient(t)
	ctx := context.Background()

	repo, err := NewServerCartRepository(ctx, rdb, 0)
	require.NoError(t, err)

	key := "cart:user:" + uuid.NewString()
	t.Cleanup(func() { rdb.Del(ctx, key) })

	require.NoError(t, repo.AddCartItem(ctx, key, 1, 2))
	require.NoError(t, repo.AddCartItem(ctx, key, 1, 3))
	require.NoError(t, repo.AddCartItem(ctx, key, 9, 1))

	cart, err := repo.GetCart(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{1: 5, 9: 1}, cart.Items)
}

func TestServerCartRepo_AddCartItemLimit(t *testing.T) {
	rdb := redisClient(t)
	ctx := context.Background()

	repo, err := NewServerCartRepository(ctx, rdb, 0)
	require.NoError(t, err)

	key := "cart:user:" + uuid.NewString()
	t.Cleanup(func() { rdb.Del(ctx, key) })

	require.NoError(t, repo.AddCartItem(ctx, key, 1, entities.MaxQuantity))
	assert.ErrorIs(t, repo.AddCartItem(ctx, key, 1, 1), models.ErrBadRequest)

	cart, err := repo.GetCart(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, entities.MaxQuantity, cart.Items[1])
}

func TestServerCartRepo_AddCartItemRejectsQuantity(t *testing.T) {
	repo := &ServerCartRepo{}
	ctx := context.Background()

	for _, quantity := range []int{0, -1, entities.MaxQuantity + 1, math.MaxInt} {
		err := repo.AddCartItem(ctx, "cart:user:1", 1, quantity)
		assert.ErrorIs(t, err, models.ErrBadRequest, "quantity %d", quantity)
	}
}

func TestServerCartRepo_EmptyCart(t *testing.T) {
	rdb := redisClient(t)
	ctx := context.Background()

	repo, err := NewServerCartRepository(ctx, rdb, 0)
	require.NoError(t, err)

	cart, err := repo.GetCart(ctx, "cart:user:"+uuid.NewString())
	require.NoError(t, err)
	assert.NotNil(t, cart.Items)
	assert.Empty(t, cart.Items)
}

func TestSessionRepo_GetUserSessionInfo(t *testing.T) {
	rdb := redisClient(t)
	ctx := context.Background()

	repo, err := NewSessionRepository(ctx, rdb)
	require.NoError(t, err)

	sessionId := uuid.NewString()
	require.NoError(t, rdb.HSet(ctx, sessionId, "userId", 42, "role", "user").Err())
	t.Cleanup(func() { rdb.Del(ctx, sessionId) })

	session, exists, err := repo.GetUserSessionInfo(ctx, sessionId)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 42, session.UserId)
	assert.Equal(t, "user", session.Role)

	_, exists, err = repo.GetUserSessionInfo(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestNewRepositories_NilConn(t *testing.T) {
	ctx := context.Background()

	_, err := NewServerCartRepository(ctx, nil, 0)
	assert.Error(t, err)

	_, err = NewSessionRepository(ctx, nil)
	assert.Error(t, err)

	_, err = NewProductRepository(ctx, nil)
	assert.Error(t, err)
}
