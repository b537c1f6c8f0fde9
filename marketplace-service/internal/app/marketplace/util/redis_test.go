package util

import (
	"context"
	"testing"
	"time"

	"servicehub/marketplace-service/internal/app/marketplace/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisClient(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisClientFromExisting(client), mr
}

func TestRedisClient_GetTopServices_Miss(t *testing.T) {
	// Arrange
	ctx := context.Background()
	rc, _ := newTestRedisClient(t)

	// Act
	top, err := rc.GetTopServices(ctx)

	// Assert - промах кеша это (nil, nil), а не ошибка
	require.NoError(t, err)
	assert.Nil(t, top)
}

func TestRedisClient_SetAndGetTopServices(t *testing.T) {
	// Arrange
	ctx := context.Background()
	rc, _ := newTestRedisClient(t)
	top := []entity.TopServiceResponse{
		{
			ServiceResponse: entity.ServiceResponse{
				ID:           uuid.New(),
				Name:         "Plumbing",
				ProviderName: "Ivan",
				Rating:       4.5,
				ReviewCount:  10,
			},
			Score: 45.0,
			Rank:  1,
		},
	}

	// Act
	err := rc.SetTopServices(ctx, top, time.Minute)
	require.NoError(t, err)
	got, err := rc.GetTopServices(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, top[0].ID, got[0].ID)
	assert.Equal(t, 45.0, got[0].Score)
	assert.Equal(t, 1, got[0].Rank)
}

func TestRedisClient_SetTopServices_TTL(t *testing.T) {
	// Arrange
	ctx := context.Background()
	rc, mr := newTestRedisClient(t)

	require.NoError(t, rc.SetTopServices(ctx, []entity.TopServiceResponse{}, time.Minute))

	// Act - проматываем время за пределы TTL
	mr.FastForward(2 * time.Minute)
	got, err := rc.GetTopServices(ctx)

	// Assert
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisClient_DeleteTopServices(t *testing.T) {
	// Arrange
	ctx := context.Background()
	rc, _ := newTestRedisClient(t)
	require.NoError(t, rc.SetTopServices(ctx, []entity.TopServiceResponse{}, time.Minute))

	// Act
	err := rc.DeleteTopServices(ctx)

	// Assert
	require.NoError(t, err)
	got, err := rc.GetTopServices(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisClient_GetTopServices_CorruptedPayload(t *testing.T) {
	// Arrange
	ctx := context.Background()
	rc, mr := newTestRedisClient(t)
	require.NoError(t, mr.Set(TopServicesCacheKey, "not a json"))

	// Act
	top, err := rc.GetTopServices(ctx)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, top)
	assert.Contains(t, err.Error(), "failed to unmarshal top services")
}
