package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"servicehub/marketplace-service/internal/app/marketplace/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository создает новый репозиторий отзывов
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create создает отзыв
// Constraint-ошибки БД переводятся в типизированные ошибки:
// дубликат (author_id, service_id) и вставка под удаленную услугу
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	result := r.db.WithContext(ctx).Create(review)
	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) {
			switch pgErr.Code {
			case "23505": // unique_violation - второй отзыв от того же автора
				return ErrDuplicateReview
			case "23503": // foreign_key_violation - услуга удалена конкурентно
				return ErrServiceNotFound
			}
		}
		return fmt.Errorf("failed to create review: %w", result.Error)
	}
	return nil
}

// GetByServiceID получает все отзывы услуги с авторами, новые первыми
func (r *reviewRepository) GetByServiceID(ctx context.Context, serviceID uuid.UUID) ([]entity.Review, error) {
	var reviews []entity.Review
	result := r.db.WithContext(ctx).
		Preload("Author").
		Where("service_id = ?", serviceID).
		Order("created_at DESC").
		Find(&reviews)

	if result.Error != nil {
		return nil, result.Error
	}

	return reviews, nil
}

// Find выбирает отзывы по фильтру, старые первыми
// Стабильный порядок важен: агрегатор определяет порядок групп
// по первому попавшему в окно отзыву
func (r *reviewRepository) Find(ctx context.Context, filter ReviewFilter) ([]entity.Review, error) {
	query := r.db.WithContext(ctx).Order("created_at ASC, id ASC")

	if filter.ServiceID != nil {
		query = query.Where("service_id = ?", *filter.ServiceID)
	}
	if filter.AuthorID != nil {
		query = query.Where("author_id = ?", *filter.AuthorID)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}

	var reviews []entity.Review
	if result := query.Find(&reviews); result.Error != nil {
		return nil, result.Error
	}

	return reviews, nil
}

// GroupByService агрегирует отзывы начиная с createdAfter по услугам
// Услуги без отзывов в окне отсутствуют в результате - среднее пустой
// группы не определено и наружу не выходит
func (r *reviewRepository) GroupByService(ctx context.Context, createdAfter time.Time) ([]entity.ReviewAggregate, error) {
	var aggregates []entity.ReviewAggregate
	result := r.db.WithContext(ctx).
		Model(&entity.Review{}).
		Select("service_id, AVG(rating)::float8 AS avg_rating, COUNT(id) AS review_count").
		Where("created_at >= ?", createdAfter).
		Group("service_id").
		Order("MIN(created_at) ASC, service_id ASC").
		Scan(&aggregates)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to aggregate reviews: %w", result.Error)
	}

	return aggregates, nil
}
