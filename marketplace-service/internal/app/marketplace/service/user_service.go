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

// UserService обрабатывает бизнес-логику пользователей
// Профили создаются auth-контуром, здесь администрирование и каскадное удаление
type UserService struct {
	userRepo      repository.UserRepository
	cascadeRepo   repository.CascadeRepository
	cache         util.RankingCache
	kafkaProducer util.MessagePublisher
}

// NewUserService создает новый сервис пользователей с внедрением зависимостей
func NewUserService(
	userRepo repository.UserRepository,
	cascadeRepo repository.CascadeRepository,
	cache util.RankingCache,
	kafkaProducer util.MessagePublisher,
) *UserService {
	return &UserService{
		userRepo:      userRepo,
		cascadeRepo:   cascadeRepo,
		cache:         cache,
		kafkaProducer: kafkaProducer,
	}
}

// GetAllUsers возвращает всех пользователей для админки
func (s *UserService) GetAllUsers(ctx context.Context) ([]entity.UserResponse, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	result := make([]entity.UserResponse, 0, len(users))
	for _, user := range users {
		result = append(result, TransformUser(user))
	}
	return result, nil
}

// GetUser возвращает пользователя по ID
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*entity.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	resp := TransformUser(*user)
	return &resp, nil
}

// PromoteToAdmin назначает пользователя администратором
func (s *UserService) PromoteToAdmin(ctx context.Context, id uuid.UUID) (*entity.UserResponse, error) {
	user, err := s.userRepo.UpdateRole(ctx, id, entity.RoleAdmin)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to promote user: %w", err)
	}

	resp := TransformUser(*user)
	return &resp, nil
}

// DeleteUser каскадно удаляет пользователя одной транзакцией:
// отзывы на его услуги, сами услуги, его отзывы на чужие услуги, запись пользователя
// Разрешено самому пользователю и админу
// Повторное удаление того же пользователя возвращает ErrUserNotFound
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorRole entity.Role) error {
	if id != actorID && actorRole != entity.RoleAdmin {
		return ErrUnauthorized
	}

	if err := s.cascadeRepo.DeleteUserCascade(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.CascadeDeletes.WithLabelValues("user", "not_found").Inc()
			return ErrUserNotFound
		}
		metrics.CascadeDeletes.WithLabelValues("user", "failure").Inc()
		return fmt.Errorf("failed to delete user cascade: %w", err)
	}

	metrics.CascadeDeletes.WithLabelValues("user", "success").Inc()

	// Вместе с пользователем удалились его услуги и отзывы - топ мог измениться
	if err := s.cache.DeleteTopServices(ctx); err != nil {
		// Пользователь уже удален, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("failed to invalidate top services cache")
	}

	event := entity.UserEvent{
		EventType: entity.EventUserDeleted,
		UserID:    id,
		Timestamp: time.Now(),
	}
	if err := s.publishUserEvent(ctx, event); err != nil {
		logger.Warn().Err(err).Msg("failed to publish user deleted event")
	}

	return nil
}

// publishUserEvent отправляет событие о пользователе в Kafka
func (s *UserService) publishUserEvent(ctx context.Context, event entity.UserEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal user event: %w", err)
	}

	if err := s.kafkaProducer.PublishMessage(ctx, event.UserID.String(), eventData); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}
