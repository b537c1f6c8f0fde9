package util

import (
	"context"
	"time"

	"servicehub/marketplace-service/internal/app/marketplace/entity"
)

// RankingCache интерфейс кеша топа услуг
// Используется для dependency injection и упрощения тестирования
type RankingCache interface {
	GetTopServices(ctx context.Context) ([]entity.TopServiceResponse, error)
	SetTopServices(ctx context.Context, top []entity.TopServiceResponse, ttl time.Duration) error
	DeleteTopServices(ctx context.Context) error
	Close() error
}

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
// Используется для dependency injection и упрощения тестирования
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
