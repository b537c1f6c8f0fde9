package repository

import (
	"context"
	"fmt"

	"servicehub/marketplace-service/internal/app/marketplace/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type cascadeRepository struct {
	db *gorm.DB
}

// NewCascadeRepository создает репозиторий каскадных удалений
// Все методы выполняются в одной транзакции: последовательность
// независимых DELETE снаружи выглядит как атомарная операция
func NewCascadeRepository(db *gorm.DB) CascadeRepository {
	return &cascadeRepository{db: db}
}

// DeleteServiceCascade удаляет услугу вместе с ее отзывами
// Порядок шагов удовлетворяет FK constraints: сначала дети, потом родитель
// Если услуги нет - транзакция откатывается целиком и возвращается ErrServiceNotFound,
// уже выполненное удаление отзывов не сохраняется
func (r *cascadeRepository) DeleteServiceCascade(ctx context.Context, serviceID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Where("service_id = ?", serviceID).Delete(&entity.Review{}); result.Error != nil {
			return fmt.Errorf("failed to delete reviews of service: %w", result.Error)
		}

		result := tx.Delete(&entity.Service{}, "id = ?", serviceID)
		if result.Error != nil {
			return fmt.Errorf("failed to delete service: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			// Возврат ошибки из замыкания откатывает транзакцию
			return ErrServiceNotFound
		}

		return nil
	})
}

// DeleteUserCascade удаляет пользователя и все зависящие от него записи:
// отзывы на его услуги, сами услуги, его отзывы на чужие услуги, самого пользователя
// Чужие услуги, на которые пользователь оставлял отзывы, не затрагиваются
func (r *cascadeRepository) DeleteUserCascade(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownedServices := tx.Model(&entity.Service{}).Select("id").Where("provider_id = ?", userID)

		if result := tx.Where("service_id IN (?)", ownedServices).Delete(&entity.Review{}); result.Error != nil {
			return fmt.Errorf("failed to delete reviews of user services: %w", result.Error)
		}

		if result := tx.Where("provider_id = ?", userID).Delete(&entity.Service{}); result.Error != nil {
			return fmt.Errorf("failed to delete user services: %w", result.Error)
		}

		if result := tx.Where("author_id = ?", userID).Delete(&entity.Review{}); result.Error != nil {
			return fmt.Errorf("failed to delete user reviews: %w", result.Error)
		}

		result := tx.Delete(&entity.User{}, "id = ?", userID)
		if result.Error != nil {
			return fmt.Errorf("failed to delete user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}

		return nil
	})
}
