package repository

import (
	"context"
	"fmt"

	"servicehub/pkg/logger"

	"gorm.io/gorm"
)

// serviceRatingRepository реализует ServiceRatingRepository через GORM
type serviceRatingRepository struct {
	db *gorm.DB
}

// NewServiceRatingRepository создает новый репозиторий агрегатов рейтинга
func NewServiceRatingRepository(db *gorm.DB) ServiceRatingRepository {
	return &serviceRatingRepository{db: db}
}

// RecalculateService пересчитывает rating и review_count услуги из таблицы reviews
// Один UPDATE с коррелированными подзапросами: пересчет атомарен
// относительно параллельных вставок отзывов
func (r *serviceRatingRepository) RecalculateService(ctx context.Context, serviceID string) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE services SET
			rating = COALESCE((SELECT AVG(rating)::float8 FROM reviews WHERE reviews.service_id = services.id), 0),
			review_count = (SELECT COUNT(*) FROM reviews WHERE reviews.service_id = services.id)
		WHERE services.id = ?`, serviceID)

	if result.Error != nil {
		return fmt.Errorf("failed to recalculate service rating: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		// Услуга уже удалена каскадом - событие опоздало, пересчитывать нечего
		logger.Debug().Str("service_id", serviceID).Msg("service not found during rating recalculation")
	}

	return nil
}

// RecalculateAll пересчитывает агрегаты всех услуг одним запросом
// Используется cron-сверкой для ликвидации расхождений
func (r *serviceRatingRepository) RecalculateAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE services SET
			rating = COALESCE((SELECT AVG(rating)::float8 FROM reviews WHERE reviews.service_id = services.id), 0),
			review_count = (SELECT COUNT(*) FROM reviews WHERE reviews.service_id = services.id)`)

	if result.Error != nil {
		return 0, fmt.Errorf("failed to recalculate all service ratings: %w", result.Error)
	}

	return result.RowsAffected, nil
}
