package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"servicehub/marketplace-service/internal/app/marketplace/entity"
	"servicehub/marketplace-service/internal/app/marketplace/service"
)

// AdminHandler обрабатывает административные HTTP запросы:
// модерация услуг, управление пользователями
type AdminHandler struct {
	catalogService service.CatalogServiceInterface
	userService    service.UserServiceInterface
	validator      *validator.Validate
}

// NewAdminHandler создает новый административный обработчик
func NewAdminHandler(catalogService service.CatalogServiceInterface, userService service.UserServiceInterface) *AdminHandler {
	return &AdminHandler{
		catalogService: catalogService,
		userService:    userService,
		validator:      validator.New(),
	}
}

// GetAllServices обрабатывает GET /admin/services
// Возвращает услуги всех статусов для модерации
func (h *AdminHandler) GetAllServices(c *gin.Context) {
	services, err := h.catalogService.GetAllServices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get services",
		})
		return
	}

	c.JSON(http.StatusOK, services)
}

// GetServiceByID обрабатывает GET /admin/services/:id
// Админ видит услугу любого статуса модерации вместе с отзывами
func (h *AdminHandler) GetServiceByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid service ID",
		})
		return
	}

	svc, err := h.catalogService.GetServiceForAdmin(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrServiceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Service not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get service",
		})
		return
	}

	c.JSON(http.StatusOK, svc)
}

// ApproveService обрабатывает PUT /admin/services/:id/approve
func (h *AdminHandler) ApproveService(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid service ID",
		})
		return
	}

	svc, err := h.catalogService.ApproveService(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrServiceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Service not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to approve service",
		})
		return
	}

	c.JSON(http.StatusOK, svc)
}

// RejectService обрабатывает PUT /admin/services/:id/reject
func (h *AdminHandler) RejectService(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid service ID",
		})
		return
	}

	svc, err := h.catalogService.RejectService(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrServiceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Service not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to reject service",
		})
		return
	}

	c.JSON(http.StatusOK, svc)
}

// SetFeatured обрабатывает PUT /admin/services/:id/featured
func (h *AdminHandler) SetFeatured(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid service ID",
		})
		return
	}

	var req entity.FeatureServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid request body",
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": formatValidationError(err),
		})
		return
	}

	svc, err := h.catalogService.SetFeatured(c.Request.Context(), id, *req.Featured)
	if err != nil {
		if errors.Is(err, service.ErrServiceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Service not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to update featured flag",
		})
		return
	}

	c.JSON(http.StatusOK, svc)
}

// GetAllUsers обрабатывает GET /admin/users
func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	users, err := h.userService.GetAllUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get users",
		})
		return
	}

	c.JSON(http.StatusOK, users)
}

// PromoteUser обрабатывает PUT /admin/users/:id/promote
func (h *AdminHandler) PromoteUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid user ID",
		})
		return
	}

	user, err := h.userService.PromoteToAdmin(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "User not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to promote user",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// DeleteUser обрабатывает DELETE /users/:id (сам пользователь или admin)
// Каскадно удаляет пользователя, его услуги и все связанные отзывы
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid user ID",
		})
		return
	}

	actorID, ok := currentUserID(c)
	role, roleOK := currentRole(c)
	if !ok || !roleOK {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Unauthorized",
		})
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), id, actorID, role); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "User not found",
			})
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden",
				"message": "Not allowed to delete this user",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to delete user",
			})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
