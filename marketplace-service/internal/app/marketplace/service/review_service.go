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
	// ErrDuplicateReview - пользователь уже оставлял отзыв на эту услугу
	ErrDuplicateReview = errors.New("review already exists for this service")
)

// ReviewService обрабатывает бизнес-логику отзывов
// Координирует работу репозиториев, кеша и Kafka
type ReviewService struct {
	reviewRepo    repository.ReviewRepository
	serviceRepo   repository.ServiceRepository
	cache         util.RankingCache
	kafkaProducer util.MessagePublisher
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	serviceRepo repository.ServiceRepository,
	cache util.RankingCache,
	kafkaProducer util.MessagePublisher,
) *ReviewService {
	return &ReviewService{
		reviewRepo:    reviewRepo,
		serviceRepo:   serviceRepo,
		cache:         cache,
		kafkaProducer: kafkaProducer,
	}
}

// CreateReview создает отзыв на опубликованную услугу
// Правила: услуга существует и одобрена, автор не владелец услуги,
// один отзыв от пользователя на услугу (дубль ловится и уникальным индексом)
func (s *ReviewService) CreateReview(ctx context.Context, authorID uuid.UUID, serviceID uuid.UUID, req *entity.CreateReviewRequest) (*entity.Review, error) {
	svc, err := s.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	if svc.ApprovalStatus != entity.ApprovalApproved {
		return nil, ErrServiceNotApproved
	}

	if svc.ProviderID == authorID {
		return nil, ErrOwnServiceReview
	}

	review := &entity.Review{
		ID:        uuid.New(),
		Rating:    req.Rating,
		Comment:   req.Comment,
		AuthorID:  authorID,
		ServiceID: serviceID,
		CreatedAt: time.Now(),
	}

	// Уникальный индекс (author_id, service_id) закрывает гонку двух
	// одновременных отзывов одного пользователя
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, ErrDuplicateReview
		}
		if errors.Is(err, repository.ErrServiceNotFound) {
			// Услугу каскадно удалили между проверкой и вставкой, FK отбил запись
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	metrics.ReviewsCreated.Inc()

	// Новый отзыв меняет агрегаты - инвалидируем кеш топа
	if err := s.cache.DeleteTopServices(ctx); err != nil {
		// Отзыв уже создан, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("failed to invalidate top services cache")
	}

	event := entity.ReviewEvent{
		EventType: entity.EventReviewCreated,
		ReviewID:  review.ID,
		ServiceID: review.ServiceID,
		AuthorID:  review.AuthorID,
		Rating:    review.Rating,
		Timestamp: time.Now(),
	}
	if err := s.publishReviewEvent(ctx, event); err != nil {
		logger.Warn().Err(err).Msg("failed to publish review created event")
	}

	return review, nil
}

// GetServiceReviews возвращает отзывы услуги, новые первыми
func (s *ReviewService) GetServiceReviews(ctx context.Context, serviceID uuid.UUID) ([]entity.ReviewResponse, error) {
	if _, err := s.serviceRepo.GetByID(ctx, serviceID); err != nil {
		if errors.Is(err, repository.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	reviews, err := s.reviewRepo.GetByServiceID(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviews: %w", err)
	}

	result := TransformReviews(reviews)
	if result == nil {
		result = []entity.ReviewResponse{}
	}
	return result, nil
}

// GetUserReviews возвращает отзывы пользователя в порядке создания
func (s *ReviewService) GetUserReviews(ctx context.Context, authorID uuid.UUID) ([]entity.ReviewResponse, error) {
	reviews, err := s.reviewRepo.Find(ctx, repository.ReviewFilter{AuthorID: &authorID})
	if err != nil {
		return nil, fmt.Errorf("failed to get user reviews: %w", err)
	}

	result := TransformReviews(reviews)
	if result == nil {
		result = []entity.ReviewResponse{}
	}
	return result, nil
}

// publishReviewEvent отправляет событие об отзыве в Kafka
// Key - это ServiceID: события одной услуги попадают в одну партицию
// и worker пересчитывает ее рейтинг в порядке событий
func (s *ReviewService) publishReviewEvent(ctx context.Context, event entity.ReviewEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal review event: %w", err)
	}

	if err := s.kafkaProducer.PublishMessage(ctx, event.ServiceID.String(), eventData); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}
