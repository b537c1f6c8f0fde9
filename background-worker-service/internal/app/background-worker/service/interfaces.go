package service

import (
	"context"

	"servicehub/background-worker-service/internal/app/background-worker/entity"
)

// RatingServiceInterface - интерфейс сервиса агрегатов для processor и тестов
type RatingServiceInterface interface {
	ProcessEvent(ctx context.Context, event *entity.MarketplaceEvent) error
	ReconcileAll(ctx context.Context) error
}
