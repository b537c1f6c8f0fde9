package repository

import (
	"context"
)

// ServiceRatingRepository пересчитывает денормализованные агрегаты
// rating и review_count в таблице services по данным таблицы reviews
type ServiceRatingRepository interface {
	// RecalculateService пересчитывает агрегаты одной услуги
	// Отсутствие услуги не ошибка: событие могло прийти после каскадного удаления
	RecalculateService(ctx context.Context, serviceID string) error
	// RecalculateAll пересчитывает агрегаты всех услуг, возвращает число обновленных строк
	RecalculateAll(ctx context.Context) (int64, error)
}

// CacheRepository инвалидирует кеш топа услуг
type CacheRepository interface {
	InvalidateTopServices(ctx context.Context) error
}
