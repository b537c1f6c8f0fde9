package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"servicehub/marketplace-service/internal/app/marketplace/entity"
	"servicehub/marketplace-service/internal/app/marketplace/repository"
	"servicehub/marketplace-service/internal/app/marketplace/repository/mocks"
	"servicehub/marketplace-service/internal/app/marketplace/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupAdminHandler() (*AdminHandler, *mocks.MockServiceRepository, *mocks.MockUserRepository, *mocks.MockCascadeRepository, *mocks.MockRankingCache, *mocks.MockMessagePublisher) {
	serviceRepo := new(mocks.MockServiceRepository)
	reviewRepo := new(mocks.MockReviewRepository)
	userRepo := new(mocks.MockUserRepository)
	cascadeRepo := new(mocks.MockCascadeRepository)
	cache := new(mocks.MockRankingCache)
	producer := new(mocks.MockMessagePublisher)

	catalogService := service.NewCatalogService(serviceRepo, reviewRepo, cascadeRepo, cache, producer)
	userService := service.NewUserService(userRepo, cascadeRepo, cache, producer)
	h := NewAdminHandler(catalogService, userService)

	return h, serviceRepo, userRepo, cascadeRepo, cache, producer
}

// ==================== Moderation Tests ====================

func TestAdminHandler_GetServiceByID_PendingVisible(t *testing.T) {
	// Arrange - админу доступна услуга любого статуса модерации
	serviceRepo := new(mocks.MockServiceRepository)
	reviewRepo := new(mocks.MockReviewRepository)
	cascadeRepo := new(mocks.MockCascadeRepository)
	cache := new(mocks.MockRankingCache)
	producer := new(mocks.MockMessagePublisher)
	catalogService := service.NewCatalogService(serviceRepo, reviewRepo, cascadeRepo, cache, producer)
	userService := service.NewUserService(new(mocks.MockUserRepository), cascadeRepo, cache, producer)
	h := NewAdminHandler(catalogService, userService)

	pending := &entity.Service{
		ID:             uuid.New(),
		Name:           "Plumbing",
		ApprovalStatus: entity.ApprovalPending,
		ProviderID:     uuid.New(),
	}

	serviceRepo.On("GetWithProvider", mock.Anything, pending.ID).Return(pending, nil)
	reviewRepo.On("GetByServiceID", mock.Anything, pending.ID).Return([]entity.Review{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/services/"+pending.ID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: pending.ID.String()}}

	// Act
	h.GetServiceByID(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.ServiceResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, entity.ApprovalPending, response.ApprovalStatus)
}

func TestAdminHandler_GetServiceByID_NotFound(t *testing.T) {
	// Arrange
	h, serviceRepo, _, _, _, _ := setupAdminHandler()
	serviceID := uuid.New()

	serviceRepo.On("GetWithProvider", mock.Anything, serviceID).Return(nil, repository.ErrServiceNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/services/"+serviceID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: serviceID.String()}}

	// Act
	h.GetServiceByID(c)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminHandler_ApproveService_Success(t *testing.T) {
	// Arrange
	h, serviceRepo, _, _, _, _ := setupAdminHandler()
	serviceID := uuid.New()
	approved := &entity.Service{ID: serviceID, Name: "Plumbing", ApprovalStatus: entity.ApprovalApproved}

	serviceRepo.On("UpdateStatus", mock.Anything, serviceID, entity.ApprovalApproved).Return(approved, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/admin/services/"+serviceID.String()+"/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: serviceID.String()}}

	// Act
	h.ApproveService(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.Service
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, entity.ApprovalApproved, response.ApprovalStatus)
}

func TestAdminHandler_RejectService_NotFound(t *testing.T) {
	// Arrange
	h, serviceRepo, _, _, _, _ := setupAdminHandler()
	serviceID := uuid.New()

	serviceRepo.On("UpdateStatus", mock.Anything, serviceID, entity.ApprovalRejected).Return(nil, repository.ErrServiceNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/admin/services/"+serviceID.String()+"/reject", nil)
	c.Params = gin.Params{{Key: "id", Value: serviceID.String()}}

	// Act
	h.RejectService(c)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminHandler_SetFeatured_Success(t *testing.T) {
	// Arrange
	h, serviceRepo, _, _, _, _ := setupAdminHandler()
	serviceID := uuid.New()
	featured := &entity.Service{ID: serviceID, Name: "Plumbing", Featured: true}

	serviceRepo.On("SetFeatured", mock.Anything, serviceID, true).Return(featured, nil)

	reqBody := entity.FeatureServiceRequest{Featured: boolPtr(true)}
	body, _ := json.Marshal(reqBody)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/admin/services/"+serviceID.String()+"/featured", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: serviceID.String()}}

	// Act
	h.SetFeatured(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
}

// ==================== User Admin Tests ====================

func TestAdminHandler_PromoteUser_Success(t *testing.T) {
	// Arrange
	h, _, userRepo, _, _, _ := setupAdminHandler()
	userID := uuid.New()
	promoted := &entity.User{ID: userID, Name: "Ivan", Role: entity.RoleAdmin}

	userRepo.On("UpdateRole", mock.Anything, userID, entity.RoleAdmin).Return(promoted, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/admin/users/"+userID.String()+"/promote", nil)
	c.Params = gin.Params{{Key: "id", Value: userID.String()}}

	// Act
	h.PromoteUser(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.UserResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, response.Role)
}

func TestAdminHandler_DeleteUser_SelfSuccess(t *testing.T) {
	// Arrange
	h, _, _, cascadeRepo, cache, producer := setupAdminHandler()
	userID := uuid.New()

	cascadeRepo.On("DeleteUserCascade", mock.Anything, userID).Return(nil)
	cache.On("DeleteTopServices", mock.Anything).Return(nil)
	producer.On("PublishMessage", mock.Anything, userID.String(), mock.Anything).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/users/"+userID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: userID.String()}}
	c.Set("user_id", userID)
	c.Set("role", entity.RoleUser)

	// Act
	h.DeleteUser(c)
	c.Writer.WriteHeaderNow()

	// Assert
	assert.Equal(t, http.StatusNoContent, w.Code)
	cascadeRepo.AssertExpectations(t)
}

func TestAdminHandler_DeleteUser_Forbidden(t *testing.T) {
	// Arrange
	h, _, _, cascadeRepo, _, _ := setupAdminHandler()
	userID := uuid.New()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/users/"+userID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: userID.String()}}
	c.Set("user_id", uuid.New())
	c.Set("role", entity.RoleUser)

	// Act
	h.DeleteUser(c)

	// Assert
	assert.Equal(t, http.StatusForbidden, w.Code)
	cascadeRepo.AssertNotCalled(t, "DeleteUserCascade", mock.Anything, mock.Anything)
}

func TestAdminHandler_DeleteUser_NotFound(t *testing.T) {
	// Arrange
	h, _, _, cascadeRepo, _, _ := setupAdminHandler()
	userID := uuid.New()

	cascadeRepo.On("DeleteUserCascade", mock.Anything, userID).Return(repository.ErrUserNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/users/"+userID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: userID.String()}}
	c.Set("user_id", userID)
	c.Set("role", entity.RoleUser)

	// Act
	h.DeleteUser(c)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminHandler_GetAllUsers_Success(t *testing.T) {
	// Arrange
	h, _, userRepo, _, _, _ := setupAdminHandler()

	userRepo.On("GetAll", mock.Anything).Return([]entity.User{
		{ID: uuid.New(), Name: "Ivan", Role: entity.RoleProvider},
		{ID: uuid.New(), Name: "Maria", Role: entity.RoleUser},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/users", nil)

	// Act
	h.GetAllUsers(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var response []entity.UserResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Len(t, response, 2)
}

func boolPtr(b bool) *bool {
	return &b
}
