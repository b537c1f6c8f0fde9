package repository

import (
	"context"
	"errors"
	"time"

	"servicehub/marketplace-service/internal/app/marketplace/entity"

	"github.com/google/uuid"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrUserNotFound    = errors.New("user not found")
	ErrServiceNotFound = errors.New("service not found")
	ErrDuplicateReview = errors.New("review by this author already exists for this service")
)

// ReviewFilter задает условия выборки отзывов
// Nil-поля не участвуют в фильтрации
type ReviewFilter struct {
	ServiceID    *uuid.UUID
	AuthorID     *uuid.UUID
	CreatedAfter *time.Time
}

// UserRepository читает и меняет профили: их создает auth-контур,
// этому сервису создание пользователей не нужно
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetAll(ctx context.Context) ([]entity.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role entity.Role) (*entity.User, error)
}

type ServiceRepository interface {
	Create(ctx context.Context, service *entity.Service) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Service, error)
	GetWithProvider(ctx context.Context, id uuid.UUID) (*entity.Service, error)
	// GetAll возвращает услуги с провайдером; status == nil означает любой статус модерации
	GetAll(ctx context.Context, status *entity.ApprovalStatus, category string) ([]entity.Service, error)
	GetFeatured(ctx context.Context) ([]entity.Service, error)
	Search(ctx context.Context, query string) ([]entity.Service, error)
	GetByProviderID(ctx context.Context, providerID uuid.UUID) ([]entity.Service, error)
	// GetByIDs возвращает услуги с заданным статусом модерации; отсутствующие id молча пропускаются
	GetByIDs(ctx context.Context, ids []uuid.UUID, status entity.ApprovalStatus) ([]entity.Service, error)
	Update(ctx context.Context, service *entity.Service) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ApprovalStatus) (*entity.Service, error)
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*entity.Service, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByServiceID(ctx context.Context, serviceID uuid.UUID) ([]entity.Review, error)
	Find(ctx context.Context, filter ReviewFilter) ([]entity.Review, error)
	// GroupByService агрегирует отзывы по услуге начиная с createdAfter;
	// услуги без отзывов в окне в результат не попадают.
	// Порядок строк: по времени первого попавшего в окно отзыва услуги
	GroupByService(ctx context.Context, createdAfter time.Time) ([]entity.ReviewAggregate, error)
}

// CascadeRepository выполняет каскадные удаления одной транзакцией:
// либо применяются все шаги, либо ни один
type CascadeRepository interface {
	DeleteServiceCascade(ctx context.Context, serviceID uuid.UUID) error
	DeleteUserCascade(ctx context.Context, userID uuid.UUID) error
}
