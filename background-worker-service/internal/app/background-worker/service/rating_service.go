package service

import (
	"context"
	"fmt"

	"servicehub/background-worker-service/internal/app/background-worker/entity"
	"servicehub/background-worker-service/internal/app/background-worker/repository"
	"servicehub/pkg/logger"
	"servicehub/pkg/metrics"
)

// RatingService обрабатывает события маркетплейса и поддерживает
// денормализованные агрегаты рейтинга услуг
type RatingService struct {
	ratingRepo repository.ServiceRatingRepository
	cacheRepo  repository.CacheRepository
}

// NewRatingService создает новый сервис агрегатов с внедрением зависимостей
func NewRatingService(
	ratingRepo repository.ServiceRatingRepository,
	cacheRepo repository.CacheRepository,
) *RatingService {
	return &RatingService{
		ratingRepo: ratingRepo,
		cacheRepo:  cacheRepo,
	}
}

// ProcessEvent обрабатывает событие маркетплейса
// События отзывов запускают пересчет агрегатов услуги,
// события удаления услуги или пользователя - только инвалидацию кеша топа
// (их данные уже удалены каскадной транзакцией)
func (s *RatingService) ProcessEvent(ctx context.Context, event *entity.MarketplaceEvent) error {
	switch event.EventType {
	case entity.EventReviewCreated, entity.EventReviewDeleted:
		if err := s.ratingRepo.RecalculateService(ctx, event.ServiceID.String()); err != nil {
			return fmt.Errorf("failed to recalculate rating for service %s: %w", event.ServiceID, err)
		}
		metrics.RatingRecalculations.WithLabelValues("event").Inc()

		logger.Info().
			Str("event_type", event.EventType).
			Str("service_id", event.ServiceID.String()).
			Msg("Service rating recalculated")

	case entity.EventServiceDeleted, entity.EventUserDeleted:
		logger.Info().
			Str("event_type", event.EventType).
			Msg("Deletion event received, invalidating top services cache")

	default:
		// Незнакомые события пропускаем: топик может расширяться раньше worker'а
		logger.Warn().
			Str("event_type", event.EventType).
			Msg("Skipping unknown event type")
		return nil
	}

	if err := s.cacheRepo.InvalidateTopServices(ctx); err != nil {
		// Агрегаты уже пересчитаны, кеш догонит по TTL
		logger.Warn().Err(err).Msg("Failed to invalidate top services cache")
	}

	return nil
}

// ReconcileAll пересчитывает агрегаты всех услуг
// Страховка от потерянных событий: вызывается cron-расписанием
func (s *RatingService) ReconcileAll(ctx context.Context) error {
	updated, err := s.ratingRepo.RecalculateAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to reconcile service ratings: %w", err)
	}
	metrics.RatingRecalculations.WithLabelValues("cron").Inc()

	logger.Info().
		Int64("services_updated", updated).
		Msg("Service rating reconciliation completed")

	if err := s.cacheRepo.InvalidateTopServices(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate top services cache")
	}

	return nil
}
