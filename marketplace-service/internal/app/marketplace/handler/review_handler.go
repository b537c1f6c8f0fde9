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

// ReviewHandler обрабатывает HTTP запросы отзывов
type ReviewHandler struct {
	reviewService service.ReviewServiceInterface
	validator     *validator.Validate
}

// NewReviewHandler создает новый обработчик отзывов
func NewReviewHandler(reviewService service.ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

// CreateReview обрабатывает POST /services/:id/reviews
// Отзыв можно оставить только на опубликованную чужую услугу, один раз
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid service ID",
		})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Unauthorized",
		})
		return
	}

	var req entity.CreateReviewRequest
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

	review, err := h.reviewService.CreateReview(c.Request.Context(), userID, serviceID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrServiceNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Not Found",
				"message": "Service not found",
			})
		case errors.Is(err, service.ErrServiceNotApproved):
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden",
				"message": "Service is not approved",
			})
		case errors.Is(err, service.ErrOwnServiceReview):
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden",
				"message": "Cannot review your own service",
			})
		case errors.Is(err, service.ErrDuplicateReview):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "Conflict",
				"message": "Review already exists for this service",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal Server Error",
				"message": "Failed to create review",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, review)
}

// GetServiceReviews обрабатывает GET /services/:id/reviews
func (h *ReviewHandler) GetServiceReviews(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid service ID",
		})
		return
	}

	reviews, err := h.reviewService.GetServiceReviews(c.Request.Context(), serviceID)
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
			"message": "Failed to get reviews",
		})
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// GetMyReviews обрабатывает GET /reviews/my
func (h *ReviewHandler) GetMyReviews(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Unauthorized",
		})
		return
	}

	reviews, err := h.reviewService.GetUserReviews(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Failed to get reviews",
		})
		return
	}

	c.JSON(http.StatusOK, reviews)
}
