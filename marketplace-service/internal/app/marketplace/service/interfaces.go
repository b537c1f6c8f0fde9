package service

import (
	"context"

	"servicehub/marketplace-service/internal/app/marketplace/entity"

	"github.com/google/uuid"
)

// Интерфейсы сервисов для handlers: позволяют подменять реализацию в тестах

type CatalogServiceInterface interface {
	CreateService(ctx context.Context, providerID uuid.UUID, req *entity.CreateServiceRequest) (*entity.Service, error)
	GetApprovedServices(ctx context.Context, category string) ([]entity.ServiceResponse, error)
	GetAllServices(ctx context.Context) ([]entity.ServiceResponse, error)
	GetService(ctx context.Context, id uuid.UUID) (*entity.ServiceResponse, error)
	GetOwnService(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorRole entity.Role) (*entity.ServiceResponse, error)
	GetServiceForAdmin(ctx context.Context, id uuid.UUID) (*entity.ServiceResponse, error)
	GetFeaturedServices(ctx context.Context) ([]entity.ServiceResponse, error)
	SearchServices(ctx context.Context, query string) ([]entity.ServiceResponse, error)
	GetProviderServices(ctx context.Context, providerID uuid.UUID) ([]entity.ServiceResponse, error)
	UpdateService(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorRole entity.Role, req *entity.UpdateServiceRequest) (*entity.Service, error)
	DeleteService(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorRole entity.Role) error
	ApproveService(ctx context.Context, id uuid.UUID) (*entity.Service, error)
	RejectService(ctx context.Context, id uuid.UUID) (*entity.Service, error)
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*entity.Service, error)
}

type ReviewServiceInterface interface {
	CreateReview(ctx context.Context, authorID uuid.UUID, serviceID uuid.UUID, req *entity.CreateReviewRequest) (*entity.Review, error)
	GetServiceReviews(ctx context.Context, serviceID uuid.UUID) ([]entity.ReviewResponse, error)
	GetUserReviews(ctx context.Context, authorID uuid.UUID) ([]entity.ReviewResponse, error)
}

type RankingServiceInterface interface {
	GetTopServices(ctx context.Context) ([]entity.TopServiceResponse, error)
}

type UserServiceInterface interface {
	GetAllUsers(ctx context.Context) ([]entity.UserResponse, error)
	GetUser(ctx context.Context, id uuid.UUID) (*entity.UserResponse, error)
	PromoteToAdmin(ctx context.Context, id uuid.UUID) (*entity.UserResponse, error)
	DeleteUser(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorRole entity.Role) error
}
