package entity

import (
	"time"

	"github.com/google/uuid"
)

// CreateServiceRequest - запрос поставщика на создание услуги
type CreateServiceRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description" validate:"required"`
	Category    string  `json:"category" validate:"required,max=100"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=255"`
	VideoURL    *string `json:"video_url,omitempty" validate:"omitempty,url"`
}

// UpdateServiceRequest - запрос на обновление услуги
// Любое обновление возвращает услугу на модерацию (PENDING)
type UpdateServiceRequest struct {
	Name        string  `json:"name" validate:"omitempty,max=255"`
	Description string  `json:"description" validate:"omitempty"`
	Category    string  `json:"category" validate:"omitempty,max=100"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=255"`
	VideoURL    *string `json:"video_url,omitempty" validate:"omitempty,url"`
}

// CreateReviewRequest - запрос на создание отзыва
type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,min=10,max=1000"`
}

// FeatureServiceRequest - запрос админа на изменение флага featured
// Указатель отличает false от отсутствующего поля
type FeatureServiceRequest struct {
	Featured *bool `json:"featured" validate:"required"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ServiceResponse - публичное представление услуги
// Поля поставщика сплющены до имени и телефона, остальное (email и т.п.) наружу не выходит
type ServiceResponse struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Category       string           `json:"category"`
	Location       *string          `json:"location,omitempty"`
	VideoURL       *string          `json:"video_url,omitempty"`
	Rating         float64          `json:"rating"`
	ReviewCount    int              `json:"review_count"`
	Featured       bool             `json:"featured"`
	ApprovalStatus ApprovalStatus   `json:"approval_status"`
	ProviderID     uuid.UUID        `json:"provider_id"`
	ProviderName   string           `json:"provider_name"`
	ProviderPhone  *string          `json:"provider_phone"`
	CreatedAt      time.Time        `json:"created_at"`
	Reviews        []ReviewResponse `json:"reviews,omitempty"`
}

// TopServiceResponse - элемент топа услуг
type TopServiceResponse struct {
	ServiceResponse
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// ReviewResponse - публичное представление отзыва
type ReviewResponse struct {
	ID         uuid.UUID `json:"id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserResponse - представление пользователя для админки
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
