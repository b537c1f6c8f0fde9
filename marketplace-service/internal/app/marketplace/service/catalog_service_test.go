package service

import (
	"context"
	"errors"
	"testing"

	"servicehub/marketplace-service/internal/app/marketplace/entity"
	"servicehub/marketplace-service/internal/app/marketplace/repository"
	"servicehub/marketplace-service/internal/app/marketplace/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCatalogServiceWithMocks() (*CatalogService, *mocks.MockServiceRepository, *mocks.MockReviewRepository, *mocks.MockCascadeRepository, *mocks.MockRankingCache, *mocks.MockMessagePublisher) {
	serviceRepo := new(mocks.MockServiceRepository)
	reviewRepo := new(mocks.MockReviewRepository)
	cascadeRepo := new(mocks.MockCascadeRepository)
	cache := new(mocks.MockRankingCache)
	producer := new(mocks.MockMessagePublisher)
	svc := NewCatalogService(serviceRepo, reviewRepo, cascadeRepo, cache, producer)
	return svc, serviceRepo, reviewRepo, cascadeRepo, cache, producer
}

func TestCatalogService_CreateService_StartsPending(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, serviceRepo, _, _, _, _ := newCatalogServiceWithMocks()
	providerID := uuid.New()

	serviceRepo.On("Create", ctx, mock.AnythingOfType("*entity.Service")).Return(nil)

	req := &entity.CreateServiceRequest{
		Name:        "Plumbing",
		Description: "Fixing pipes and leaks",
		Category:    "Repair",
	}

	// Act
	created, err := svc.CreateService(ctx, providerID, req)

	// Assert - новая услуга всегда на модерации
	require.NoError(t, err)
	assert.Equal(t, entity.ApprovalPending, created.ApprovalStatus)
	assert.Equal(t, providerID, created.ProviderID)
	assert.NotEqual(t, uuid.Nil, created.ID)
	serviceRepo.AssertExpectations(t)
}

func TestCatalogService_CreateService_ProviderMissing(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, serviceRepo, _, _, _, _ := newCatalogServiceWithMocks()

	serviceRepo.On("Create", ctx, mock.AnythingOfType("*entity.Service")).Return(repository.ErrUserNotFound)

	req := &entity.CreateServiceRequest{Name: "Plumbing", Description: "Fixing pipes", Category: "Repair"}

	// Act
	created, err := svc.CreateService(ctx, uuid.New(), req)

	// Assert
	assert.Nil(t, created)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCatalogService_UpdateService_ResetsToPending(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, serviceRepo, _, _, _, _ := newCatalogServiceWithMocks()
	providerID := uuid.New()
	existing := &entity.Service{
		ID:             uuid.New(),
		Name:           "Plumbing",
		ApprovalStatus: entity.ApprovalApproved,
		ProviderID:     providerID,
	}

	serviceRepo.On("GetByID", ctx, existing.ID).Return(existing, nil)
	serviceRepo.On("Update", ctx, mock.AnythingOfType("*entity.Service")).Return(nil)

	req := &entity.UpdateServiceRequest{Name: "Plumbing Pro"}

	// Act
	updated, err := svc.UpdateService(ctx, existing.ID, providerID, entity.RoleProvider, req)

	// Assert - обновленная услуга возвращается на модерацию
	require.NoError(t, err)
	assert.Equal(t, "Plumbing Pro", updated.Name)
	assert.Equal(t, entity.ApprovalPending, updated.ApprovalStatus)
}

func TestCatalogService_UpdateService_NotOwner(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, serviceRepo, _, _, _, _ := newCatalogServiceWithMocks()
	existing := &entity.Service{ID: uuid.New(), ProviderID: uuid.New()}

	serviceRepo.On("GetByID", ctx, existing.ID).Return(existing, nil)

	// Act - чужой пользователь без прав админа
	updated, err := svc.UpdateService(ctx, existing.ID, uuid.New(), entity.RoleUser, &entity.UpdateServiceRequest{Name: "X"})

	// Assert
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, ErrUnauthorized)
	serviceRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCatalogService_DeleteService_OwnerCascade(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, serviceRepo, _, cascadeRepo, cache, producer := newCatalogServiceWithMocks()
	providerID := uuid.New()
	existing := &entity.Service{ID: uuid.New(), ProviderID: providerID}

	serviceRepo.On("GetByID", ctx, existing.ID).Return(existing, nil)
	cascadeRepo.On("DeleteServiceCascade", ctx, existing.ID).Return(nil)
	cache.On("DeleteTopServices", ctx).Return(nil)
	producer.On("PublishMessage", ctx, existing.ID.String(), mock.Anything).Return(nil)

	// Act
	err := svc.DeleteService(ctx, existing.ID, providerID, entity.RoleProvider)

	// Assert
	require.NoError(t, err)
	cascadeRepo.AssertExpectations(t)
	cache.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestCatalogService_DeleteService_AdminAllowed(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, serviceRepo, _, cascadeRepo, cache, producer := newCatalogServiceWithMocks()
	existing := &entity.Service{ID: uuid.New(), ProviderID: uuid.New()}

	serviceRepo.On("GetByID", ctx, existing.ID).Return(existing, nil)
	cascadeRepo.On("DeleteServiceCascade", ctx, existing.ID).Return(nil)
	cache.On("DeleteTopServices", ctx).Return(nil)
	producer.On("PublishMessage", ctx, existing.ID.String(), mock.Anything).Return(nil)

	// Act - админ удаляет чужую услугу
	err := svc.DeleteService(ctx, existing.ID, uuid.New(), entity.RoleAdmin)

	// Assert
	require.NoError(t, err)
}

func TestCatalogService_DeleteService_NotOwner(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, serviceRepo, _, cascadeRepo, _, _ := newCatalogServiceWithMocks()
	existing := &entity.Service{ID: uuid.New(), ProviderID: uuid.New()}

	serviceRepo.On("GetByID", ctx, existing.ID).Return(existing, nil)

	// Act
	err := svc.DeleteService(ctx, existing.ID, uuid.New(), entity.RoleUser)

	// Assert - каскад не запускался
	assert.ErrorIs(t, err, ErrUnauthorized)
	cascadeRepo.AssertNotCalled(t, "DeleteServiceCascade", mock.Anything, mock.Anything)
}

func TestCatalogService_DeleteService_NotFound(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, serviceRepo, _, _, _, _ := newCatalogServiceWithMocks()
	serviceID := uuid.New()

	serviceRepo.On("GetByID", ctx, serviceID).Return(nil, repository.ErrServiceNotFound)

	// Act
	err := svc.DeleteService(ctx, serviceID, uuid.New(), entity.RoleAdmin)

	// Assert
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestCatalogService_DeleteService_CascadeFailure(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, serviceRepo, _, cascadeRepo, cache, producer := newCatalogServiceWithMocks()
	providerID := uuid.New()
	existing := &entity.Service{ID: uuid.New(), ProviderID: providerID}

	serviceRepo.On("GetByID", ctx, existing.ID).Return(existing, nil)
	cascadeRepo.On("DeleteServiceCascade", ctx, existing.ID).Return(errors.New("tx failed"))

	// Act
	err := svc.DeleteService(ctx, existing.ID, providerID, entity.RoleProvider)

	// Assert - при откате транзакции ни кеш, ни Kafka не трогаем
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete service cascade")
	cache.AssertNotCalled(t, "DeleteTopServices", mock.Anything)
	producer.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestCatalogService_ApproveService(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, serviceRepo, _, _, _, _ := newCatalogServiceWithMocks()
	serviceID := uuid.New()
	approved := &entity.Service{ID: serviceID, ApprovalStatus: entity.ApprovalApproved}

	serviceRepo.On("UpdateStatus", ctx, serviceID, entity.ApprovalApproved).Return(approved, nil)

	// Act
	result, err := svc.ApproveService(ctx, serviceID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.ApprovalApproved, result.ApprovalStatus)
}

func TestCatalogService_RejectService_NotFound(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, serviceRepo, _, _, _, _ := newCatalogServiceWithMocks()
	serviceID := uuid.New()

	serviceRepo.On("UpdateStatus", ctx, serviceID, entity.ApprovalRejected).Return(nil, repository.ErrServiceNotFound)

	// Act
	result, err := svc.RejectService(ctx, serviceID)

	// Assert
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestCatalogService_GetService_WithReviews(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, serviceRepo, reviewRepo, _, _, _ := newCatalogServiceWithMocks()
	provider := &entity.User{ID: uuid.New(), Name: "Ivan"}
	existing := &entity.Service{
		ID:             uuid.New(),
		Name:           "Plumbing",
		ApprovalStatus: entity.ApprovalApproved,
		Provider:       provider,
		ProviderID:     provider.ID,
	}
	reviews := []entity.Review{
		{ID: uuid.New(), Rating: 5, Comment: "Great work, thank you"},
	}

	serviceRepo.On("GetWithProvider", ctx, existing.ID).Return(existing, nil)
	reviewRepo.On("GetByServiceID", ctx, existing.ID).Return(reviews, nil)

	// Act
	resp, err := svc.GetService(ctx, existing.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Ivan", resp.ProviderName)
	require.Len(t, resp.Reviews, 1)
	assert.Equal(t, 5, resp.Reviews[0].Rating)
}

func TestCatalogService_GetService_PendingHidden(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, serviceRepo, reviewRepo, _, _, _ := newCatalogServiceWithMocks()
	existing := &entity.Service{
		ID:             uuid.New(),
		Name:           "Plumbing",
		ApprovalStatus: entity.ApprovalPending,
		ProviderID:     uuid.New(),
	}

	serviceRepo.On("GetWithProvider", ctx, existing.ID).Return(existing, nil)

	// Act - публичный запрос неопубликованной услуги
	resp, err := svc.GetService(ctx, existing.ID)

	// Assert - для публичного каталога услуга не существует
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrServiceNotFound)
	reviewRepo.AssertNotCalled(t, "GetByServiceID", mock.Anything, mock.Anything)
}

func TestCatalogService_GetService_RejectedHidden(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, serviceRepo, _, _, _, _ := newCatalogServiceWithMocks()
	existing := &entity.Service{
		ID:             uuid.New(),
		ApprovalStatus: entity.ApprovalRejected,
		ProviderID:     uuid.New(),
	}

	serviceRepo.On("GetWithProvider", ctx, existing.ID).Return(existing, nil)

	// Act
	resp, err := svc.GetService(ctx, existing.ID)

	// Assert
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestCatalogService_GetOwnService_PendingVisibleToOwner(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, serviceRepo, reviewRepo, _, _, _ := newCatalogServiceWithMocks()
	provider := &entity.User{ID: uuid.New(), Name: "Ivan"}
	existing := &entity.Service{
		ID:             uuid.New(),
		Name:           "Plumbing",
		ApprovalStatus: entity.ApprovalPending,
		Provider:       provider,
		ProviderID:     provider.ID,
	}

	serviceRepo.On("GetWithProvider", ctx, existing.ID).Return(existing, nil)
	reviewRepo.On("GetByServiceID", ctx, existing.ID).Return([]entity.Review{}, nil)

	// Act - владелец смотрит свою услугу на модерации
	resp, err := svc.GetOwnService(ctx, existing.ID, provider.ID, entity.RoleProvider)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.ApprovalPending, resp.ApprovalStatus)
	assert.Equal(t, "Ivan", resp.ProviderName)
}

func TestCatalogService_GetOwnService_ForeignForbidden(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, serviceRepo, reviewRepo, _, _, _ := newCatalogServiceWithMocks()
	existing := &entity.Service{ID: uuid.New(), ProviderID: uuid.New()}

	serviceRepo.On("GetWithProvider", ctx, existing.ID).Return(existing, nil)

	// Act - чужая услуга без прав админа
	resp, err := svc.GetOwnService(ctx, existing.ID, uuid.New(), entity.RoleProvider)

	// Assert
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrUnauthorized)
	reviewRepo.AssertNotCalled(t, "GetByServiceID", mock.Anything, mock.Anything)
}

func TestCatalogService_GetServiceForAdmin_PendingVisible(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, serviceRepo, reviewRepo, _, _, _ := newCatalogServiceWithMocks()
	existing := &entity.Service{
		ID:             uuid.New(),
		ApprovalStatus: entity.ApprovalPending,
		ProviderID:     uuid.New(),
	}

	serviceRepo.On("GetWithProvider", ctx, existing.ID).Return(existing, nil)
	reviewRepo.On("GetByServiceID", ctx, existing.ID).Return([]entity.Review{}, nil)

	// Act - админ видит услугу любого статуса
	resp, err := svc.GetServiceForAdmin(ctx, existing.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.ApprovalPending, resp.ApprovalStatus)
}

func TestCatalogService_GetApprovedServices_FiltersStatus(t *testing.T) {
	// Arrange
	ctx := context.Background()
	svc, serviceRepo, _, _, _, _ := newCatalogServiceWithMocks()
	approved := entity.ApprovalApproved

	serviceRepo.On("GetAll", ctx, &approved, "Repair").Return([]entity.Service{
		{ID: uuid.New(), Name: "Plumbing", ApprovalStatus: entity.ApprovalApproved},
	}, nil)

	// Act
	services, err := svc.GetApprovedServices(ctx, "Repair")

	// Assert
	require.NoError(t, err)
	assert.Len(t, services, 1)
	serviceRepo.AssertExpectations(t)
}
