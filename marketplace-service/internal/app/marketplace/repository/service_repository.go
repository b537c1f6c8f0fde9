package repository

import (
	"context"
	"errors"
	"fmt"

	"servicehub/marketplace-service/internal/app/marketplace/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type serviceRepository struct {
	db *gorm.DB
}

// NewServiceRepository создает новый репозиторий услуг
func NewServiceRepository(db *gorm.DB) ServiceRepository {
	return &serviceRepository{db: db}
}

// Create создает новую услугу
func (r *serviceRepository) Create(ctx context.Context, service *entity.Service) error {
	result := r.db.WithContext(ctx).Create(service)
	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create service: %w", result.Error)
	}
	return nil
}

// GetByID получает услугу по ID без join провайдера
func (r *serviceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	var service entity.Service
	result := r.db.WithContext(ctx).First(&service, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, result.Error
	}

	return &service, nil
}

// GetWithProvider получает услугу вместе с данными провайдера
func (r *serviceRepository) GetWithProvider(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	var service entity.Service
	result := r.db.WithContext(ctx).Preload("Provider").First(&service, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, result.Error
	}

	return &service, nil
}

// GetAll получает услуги с провайдером, новые первыми
// status == nil означает любой статус (админская выборка)
func (r *serviceRepository) GetAll(ctx context.Context, status *entity.ApprovalStatus, category string) ([]entity.Service, error) {
	query := r.db.WithContext(ctx).Preload("Provider").Order("created_at DESC")

	if status != nil {
		query = query.Where("approval_status = ?", *status)
	}
	if category != "" && category != "All" {
		query = query.Where("category = ?", category)
	}

	var services []entity.Service
	if result := query.Find(&services); result.Error != nil {
		return nil, result.Error
	}

	return services, nil
}

// GetFeatured получает опубликованные услуги с флагом featured, лучший рейтинг первым
func (r *serviceRepository) GetFeatured(ctx context.Context) ([]entity.Service, error) {
	var services []entity.Service
	result := r.db.WithContext(ctx).
		Preload("Provider").
		Where("featured = ? AND approval_status = ?", true, entity.ApprovalApproved).
		Order("rating DESC").
		Find(&services)

	if result.Error != nil {
		return nil, result.Error
	}

	return services, nil
}

// Search ищет опубликованные услуги по имени, описанию и категории без учета регистра
func (r *serviceRepository) Search(ctx context.Context, query string) ([]entity.Service, error) {
	pattern := "%" + query + "%"

	var services []entity.Service
	result := r.db.WithContext(ctx).
		Preload("Provider").
		Where("approval_status = ?", entity.ApprovalApproved).
		Where("name ILIKE ? OR description ILIKE ? OR category ILIKE ?", pattern, pattern, pattern).
		Order("rating DESC").
		Find(&services)

	if result.Error != nil {
		return nil, result.Error
	}

	return services, nil
}

// GetByProviderID получает все услуги поставщика независимо от статуса модерации
func (r *serviceRepository) GetByProviderID(ctx context.Context, providerID uuid.UUID) ([]entity.Service, error) {
	var services []entity.Service
	result := r.db.WithContext(ctx).
		Preload("Provider").
		Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Find(&services)

	if result.Error != nil {
		return nil, result.Error
	}

	return services, nil
}

// GetByIDs получает услуги из списка id с заданным статусом модерации
// Отсутствующие или не прошедшие фильтр id просто не попадают в результат
func (r *serviceRepository) GetByIDs(ctx context.Context, ids []uuid.UUID, status entity.ApprovalStatus) ([]entity.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var services []entity.Service
	result := r.db.WithContext(ctx).
		Preload("Provider").
		Where("id IN ? AND approval_status = ?", ids, status).
		Find(&services)

	if result.Error != nil {
		return nil, result.Error
	}

	return services, nil
}

// Update обновляет редактируемые поля услуги
func (r *serviceRepository) Update(ctx context.Context, service *entity.Service) error {
	result := r.db.WithContext(ctx).Model(service).Where("id = ?", service.ID).Updates(map[string]interface{}{
		"name":            service.Name,
		"description":     service.Description,
		"category":        service.Category,
		"location":        service.Location,
		"video_url":       service.VideoURL,
		"approval_status": service.ApprovalStatus,
	})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrServiceNotFound
	}

	return nil
}

// UpdateStatus меняет статус модерации и возвращает обновленную услугу
func (r *serviceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ApprovalStatus) (*entity.Service, error) {
	result := r.db.WithContext(ctx).Model(&entity.Service{}).
		Where("id = ?", id).
		Update("approval_status", status)

	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, ErrServiceNotFound
	}

	return r.GetByID(ctx, id)
}

// SetFeatured меняет флаг featured и возвращает обновленную услугу
func (r *serviceRepository) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*entity.Service, error) {
	result := r.db.WithContext(ctx).Model(&entity.Service{}).
		Where("id = ?", id).
		Update("featured", featured)

	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, ErrServiceNotFound
	}

	return r.GetByID(ctx, id)
}
