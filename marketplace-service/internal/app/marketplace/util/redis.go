package util

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"servicehub/marketplace-service/internal/app/marketplace/entity"

	"github.com/redis/go-redis/v9"
)

// TopServicesCacheKey - ключ кеша топа услуг
// Worker инвалидирует его по этому же имени при событиях отзывов
const TopServicesCacheKey = "services:top-ranked"

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// NewRedisClientFromExisting оборачивает уже созданный клиент (используется в тестах с miniredis)
func NewRedisClientFromExisting(client *redis.Client) *RedisClient {
	return &RedisClient{client: client}
}

// GetTopServices читает топ из кеша; (nil, nil) означает cache miss
func (r *RedisClient) GetTopServices(ctx context.Context) ([]entity.TopServiceResponse, error) {
	data, err := r.client.Get(ctx, TopServicesCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get top services from cache: %w", err)
	}

	var top []entity.TopServiceResponse
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("failed to unmarshal top services: %w", err)
	}

	return top, nil
}

// SetTopServices кеширует топ на ttl
func (r *RedisClient) SetTopServices(ctx context.Context, top []entity.TopServiceResponse, ttl time.Duration) error {
	data, err := json.Marshal(top)
	if err != nil {
		return fmt.Errorf("failed to marshal top services: %w", err)
	}

	if err := r.client.Set(ctx, TopServicesCacheKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set top services in cache: %w", err)
	}

	return nil
}

// DeleteTopServices инвалидирует кеш топа
func (r *RedisClient) DeleteTopServices(ctx context.Context) error {
	if err := r.client.Del(ctx, TopServicesCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to delete top services from cache: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
