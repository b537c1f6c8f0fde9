package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"servicehub/marketplace-service/internal/app/marketplace/entity"
	"servicehub/marketplace-service/internal/app/marketplace/repository"
	"servicehub/marketplace-service/internal/app/marketplace/util"
	"servicehub/pkg/logger"
	"servicehub/pkg/metrics"

	"github.com/google/uuid"
)

var (
	// Ошибки бизнес-логики каталога для обработки в handlers
	ErrServiceNotFound = errors.New("service not found")
	ErrUserNotFound    = errors.New("user not found")
)

// CatalogService обрабатывает бизнес-логику каталога услуг
// Координирует работу репозиториев, Redis кеша и Kafka producer
type CatalogService struct {
	serviceRepo   repository.ServiceRepository
	reviewRepo    repository.ReviewRepository
	cascadeRepo   repository.CascadeRepository
	cache         util.RankingCache
	kafkaProducer util.MessagePublisher
}

// NewCatalogService создает новый сервис каталога с внедрением зависимостей
func NewCatalogService(
	serviceRepo repository.ServiceRepository,
	reviewRepo repository.ReviewRepository,
	cascadeRepo repository.CascadeRepository,
	cache util.RankingCache,
	kafkaProducer util.MessagePublisher,
) *CatalogService {
	return &CatalogService{
		serviceRepo:   serviceRepo,
		reviewRepo:    reviewRepo,
		cascadeRepo:   cascadeRepo,
		cache:         cache,
		kafkaProducer: kafkaProducer,
	}
}

// CreateService создает новую услугу со статусом PENDING
// Услуга попадает в публичный каталог только после одобрения админом
func (s *CatalogService) CreateService(ctx context.Context, providerID uuid.UUID, req *entity.CreateServiceRequest) (*entity.Service, error) {
	svc := &entity.Service{
		ID:             uuid.New(),
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		Location:       req.Location,
		VideoURL:       req.VideoURL,
		ApprovalStatus: entity.ApprovalPending,
		ProviderID:     providerID,
		CreatedAt:      time.Now(),
	}

	if err := s.serviceRepo.Create(ctx, svc); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	metrics.ServicesCreated.Inc()

	return svc, nil
}

// GetApprovedServices возвращает публичный каталог: только одобренные услуги
// category фильтрует по категории, пустая строка или "All" - без фильтра
func (s *CatalogService) GetApprovedServices(ctx context.Context, category string) ([]entity.ServiceResponse, error) {
	status := entity.ApprovalApproved
	services, err := s.serviceRepo.GetAll(ctx, &status, category)
	if err != nil {
		return nil, fmt.Errorf("failed to get services: %w", err)
	}

	result := make([]entity.ServiceResponse, 0, len(services))
	for _, svc := range services {
		result = append(result, TransformService(svc))
	}
	return result, nil
}

// GetAllServices возвращает услуги всех статусов для модерации
func (s *CatalogService) GetAllServices(ctx context.Context) ([]entity.ServiceResponse, error) {
	services, err := s.serviceRepo.GetAll(ctx, nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to get services: %w", err)
	}

	result := make([]entity.ServiceResponse, 0, len(services))
	for _, svc := range services {
		result = append(result, TransformService(svc))
	}
	return result, nil
}

// GetService возвращает опубликованную услугу с данными поставщика и отзывами
// Для публичного каталога PENDING и REJECTED услуги не существуют
func (s *CatalogService) GetService(ctx context.Context, id uuid.UUID) (*entity.ServiceResponse, error) {
	svc, err := s.serviceRepo.GetWithProvider(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	if svc.ApprovalStatus != entity.ApprovalApproved {
		return nil, ErrServiceNotFound
	}

	return s.serviceWithReviews(ctx, svc)
}

// GetOwnService возвращает услугу поставщика любого статуса модерации
// Чужая услуга доступна только админу
func (s *CatalogService) GetOwnService(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorRole entity.Role) (*entity.ServiceResponse, error) {
	svc, err := s.serviceRepo.GetWithProvider(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	if svc.ProviderID != actorID && actorRole != entity.RoleAdmin {
		return nil, ErrUnauthorized
	}

	return s.serviceWithReviews(ctx, svc)
}

// GetServiceForAdmin возвращает услугу любого статуса с отзывами для модерации
func (s *CatalogService) GetServiceForAdmin(ctx context.Context, id uuid.UUID) (*entity.ServiceResponse, error) {
	svc, err := s.serviceRepo.GetWithProvider(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	return s.serviceWithReviews(ctx, svc)
}

// serviceWithReviews догружает отзывы и собирает публичное представление
func (s *CatalogService) serviceWithReviews(ctx context.Context, svc *entity.Service) (*entity.ServiceResponse, error) {
	reviews, err := s.reviewRepo.GetByServiceID(ctx, svc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get service reviews: %w", err)
	}

	resp := TransformServiceWithReviews(*svc, reviews)
	return &resp, nil
}

// GetFeaturedServices возвращает избранные опубликованные услуги
func (s *CatalogService) GetFeaturedServices(ctx context.Context) ([]entity.ServiceResponse, error) {
	services, err := s.serviceRepo.GetFeatured(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get featured services: %w", err)
	}

	result := make([]entity.ServiceResponse, 0, len(services))
	for _, svc := range services {
		result = append(result, TransformService(svc))
	}
	return result, nil
}

// SearchServices ищет опубликованные услуги по названию, описанию и категории
func (s *CatalogService) SearchServices(ctx context.Context, query string) ([]entity.ServiceResponse, error) {
	services, err := s.serviceRepo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search services: %w", err)
	}

	result := make([]entity.ServiceResponse, 0, len(services))
	for _, svc := range services {
		result = append(result, TransformService(svc))
	}
	return result, nil
}

// GetProviderServices возвращает услуги поставщика любого статуса
// Поставщик видит свои PENDING и REJECTED услуги
func (s *CatalogService) GetProviderServices(ctx context.Context, providerID uuid.UUID) ([]entity.ServiceResponse, error) {
	services, err := s.serviceRepo.GetByProviderID(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get provider services: %w", err)
	}

	result := make([]entity.ServiceResponse, 0, len(services))
	for _, svc := range services {
		result = append(result, TransformService(svc))
	}
	return result, nil
}

// UpdateService обновляет услугу и возвращает ее на модерацию
// Разрешено владельцу услуги и админу; любое обновление сбрасывает статус в PENDING
func (s *CatalogService) UpdateService(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorRole entity.Role, req *entity.UpdateServiceRequest) (*entity.Service, error) {
	svc, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	if svc.ProviderID != actorID && actorRole != entity.RoleAdmin {
		return nil, ErrUnauthorized
	}

	// Обновляем только переданные поля (частичное обновление)
	if req.Name != "" {
		svc.Name = req.Name
	}
	if req.Description != "" {
		svc.Description = req.Description
	}
	if req.Category != "" {
		svc.Category = req.Category
	}
	if req.Location != nil {
		svc.Location = req.Location
	}
	if req.VideoURL != nil {
		svc.VideoURL = req.VideoURL
	}

	// Обновленная услуга снова проходит модерацию
	svc.ApprovalStatus = entity.ApprovalPending

	if err := s.serviceRepo.Update(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}

	return svc, nil
}

// DeleteService каскадно удаляет услугу и все ее отзывы одной транзакцией
// Разрешено владельцу услуги и админу
// После удаления инвалидируется кеш топа и отправляется событие SERVICE_DELETED
func (s *CatalogService) DeleteService(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorRole entity.Role) error {
	svc, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			metrics.CascadeDeletes.WithLabelValues("service", "not_found").Inc()
			return ErrServiceNotFound
		}
		return fmt.Errorf("failed to get service: %w", err)
	}

	if svc.ProviderID != actorID && actorRole != entity.RoleAdmin {
		return ErrUnauthorized
	}

	if err := s.cascadeRepo.DeleteServiceCascade(ctx, id); err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			// Услугу успели удалить между проверкой и транзакцией
			metrics.CascadeDeletes.WithLabelValues("service", "not_found").Inc()
			return ErrServiceNotFound
		}
		metrics.CascadeDeletes.WithLabelValues("service", "failure").Inc()
		return fmt.Errorf("failed to delete service cascade: %w", err)
	}

	metrics.CascadeDeletes.WithLabelValues("service", "success").Inc()

	// Удаленная услуга могла быть в топе
	if err := s.cache.DeleteTopServices(ctx); err != nil {
		// Услуга уже удалена, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("failed to invalidate top services cache")
	}

	event := entity.ServiceEvent{
		EventType:  entity.EventServiceDeleted,
		ServiceID:  id,
		ProviderID: svc.ProviderID,
		Timestamp:  time.Now(),
	}
	if err := s.publishServiceEvent(ctx, event); err != nil {
		logger.Warn().Err(err).Msg("failed to publish service deleted event")
	}

	return nil
}

// ApproveService публикует услугу (только для админа, проверяется в handler)
func (s *CatalogService) ApproveService(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	svc, err := s.serviceRepo.UpdateStatus(ctx, id, entity.ApprovalApproved)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to approve service: %w", err)
	}

	metrics.ServicesModerated.WithLabelValues("approved").Inc()

	return svc, nil
}

// RejectService отклоняет услугу
func (s *CatalogService) RejectService(ctx context.Context, id uuid.UUID) (*entity.Service, error) {
	svc, err := s.serviceRepo.UpdateStatus(ctx, id, entity.ApprovalRejected)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to reject service: %w", err)
	}

	metrics.ServicesModerated.WithLabelValues("rejected").Inc()

	return svc, nil
}

// SetFeatured включает или выключает флаг избранной услуги
func (s *CatalogService) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*entity.Service, error) {
	svc, err := s.serviceRepo.SetFeatured(ctx, id, featured)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to set featured flag: %w", err)
	}

	return svc, nil
}

// publishServiceEvent отправляет событие об услуге в Kafka
// Key - это ServiceID для правильного партиционирования
func (s *CatalogService) publishServiceEvent(ctx context.Context, event entity.ServiceEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal service event: %w", err)
	}

	if err := s.kafkaProducer.PublishMessage(ctx, event.ServiceID.String(), eventData); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}
