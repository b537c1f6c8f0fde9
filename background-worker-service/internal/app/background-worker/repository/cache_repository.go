package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// TopServicesCacheKey - ключ кеша топа услуг
// Должен совпадать с ключом, под которым маркетплейс кеширует топ
const TopServicesCacheKey = "services:top-ranked"

// cacheRepository реализует CacheRepository поверх Redis
type cacheRepository struct {
	client *redis.Client
}

// NewCacheRepository создает новый репозиторий кеша
func NewCacheRepository(client *redis.Client) CacheRepository {
	return &cacheRepository{client: client}
}

// InvalidateTopServices удаляет закешированный топ услуг
// Следующий запрос топа соберет его из свежих агрегатов
func (r *cacheRepository) InvalidateTopServices(ctx context.Context) error {
	if err := r.client.Del(ctx, TopServicesCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate top services cache: %w", err)
	}
	return nil
}
