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

// ServiceHandler обрабатывает HTTP запросы каталога услуг
type ServiceHandler struct {
	catalogService service.CatalogServiceInterface
	rankingService service.RankingServiceInterface
	validator      *validator.Validate
}

// NewServiceHandler создает новый обработчик каталога
func NewServiceHandler(catalogService service.CatalogServiceInterface, rankingService service.RankingServiceInterface) *ServiceHandler {
	return &ServiceHandler{
		catalogService: catalogService,
		rankingService: rankingService,
		validator:      validator.New(),
	}
}

// GetServices обрабатывает GET /services
// Публичный каталог: только одобренные услуги, опциональный фильтр по категории
func (h *ServiceHandler) GetServices(c *gin.Context) {
	category := c.Query("category")

	services, err := h.catalogService.GetApprovedServices(c.Request.Context(), category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get services",
		})
		return
	}

	c.JSON(http.StatusOK, services)
}

// GetService обрабатывает GET /services/:id
func (h *ServiceHandler) GetService(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid service ID",
		})
		return
	}

	svc, err := h.catalogService.GetService(c.Request.Context(), id)
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

// GetTopServices обрабатывает GET /services/top
// Топ услуг по отзывам за окно агрегации
func (h *ServiceHandler) GetTopServices(c *gin.Context) {
	top, err := h.rankingService.GetTopServices(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrInvalidRanking) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Bad Request",
				"message": "Invalid ranking parameters",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get top services",
		})
		return
	}

	c.JSON(http.StatusOK, top)
}

// GetFeaturedServices обрабатывает GET /services/featured
func (h *ServiceHandler) GetFeaturedServices(c *gin.Context) {
	services, err := h.catalogService.GetFeaturedServices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get featured services",
		})
		return
	}

	c.JSON(http.StatusOK, services)
}

// SearchServices обрабатывает GET /services/search?q=query
func (h *ServiceHandler) SearchServices(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Query parameter 'q' is required",
		})
		return
	}

	services, err := h.catalogService.SearchServices(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to search services",
		})
		return
	}

	c.JSON(http.StatusOK, services)
}

// CreateService обрабатывает POST /services (provider, admin)
func (h *ServiceHandler) CreateService(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Unauthorized",
		})
		return
	}

	var req entity.CreateServiceRequest
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

	svc, err := h.catalogService.CreateService(c.Request.Context(), userID, &req)
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
			"message": "Failed to create service",
		})
		return
	}

	c.JSON(http.StatusCreated, svc)
}

// GetMyServices обрабатывает GET /services/my (provider, admin)
// Поставщик видит свои услуги любого статуса модерации
func (h *ServiceHandler) GetMyServices(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Unauthorized",
		})
		return
	}

	services, err := h.catalogService.GetProviderServices(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get services",
		})
		return
	}

	c.JSON(http.StatusOK, services)
}

// GetMyService обрабатывает GET /services/my/:id (provider, admin)
// Поставщик видит свою услугу любого статуса, чужую - только админ
func (h *ServiceHandler) GetMyService(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid service ID",
		})
		return
	}

	userID, ok := currentUserID(c)
	role, roleOK := currentRole(c)
	if !ok || !roleOK {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Unauthorized",
		})
		return
	}

	svc, err := h.catalogService.GetOwnService(c.Request.Context(), id, userID, role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrServiceNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Service not found",
			})
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden",
				"message": "Not allowed to view this service",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to get service",
			})
		}
		return
	}

	c.JSON(http.StatusOK, svc)
}

// UpdateService обрабатывает PUT /services/:id (владелец или admin)
func (h *ServiceHandler) UpdateService(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid service ID",
		})
		return
	}

	userID, ok := currentUserID(c)
	role, roleOK := currentRole(c)
	if !ok || !roleOK {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Unauthorized",
		})
		return
	}

	var req entity.UpdateServiceRequest
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

	svc, err := h.catalogService.UpdateService(c.Request.Context(), id, userID, role, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrServiceNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Service not found",
			})
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden",
				"message": "Not allowed to update this service",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to update service",
			})
		}
		return
	}

	c.JSON(http.StatusOK, svc)
}

// DeleteService обрабатывает DELETE /services/:id (владелец или admin)
// Каскадно удаляет услугу вместе с отзывами
func (h *ServiceHandler) DeleteService(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid service ID",
		})
		return
	}

	userID, ok := currentUserID(c)
	role, roleOK := currentRole(c)
	if !ok || !roleOK {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Unauthorized",
		})
		return
	}

	if err := h.catalogService.DeleteService(c.Request.Context(), id, userID, role); err != nil {
		switch {
		case errors.Is(err, service.ErrServiceNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Service not found",
			})
		case errors.Is(err, service.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden",
				"message": "Not allowed to delete this service",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to delete service",
			})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// formatValidationError форматирует ошибки валидации
func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
