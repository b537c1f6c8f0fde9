package entity

import (
	"time"

	"github.com/google/uuid"
)

// Service - проекция таблицы services маркетплейса
// Worker обновляет только денормализованные агрегаты rating и review_count
type Service struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Rating      float64   `json:"rating" gorm:"type:decimal(3,2);not null;default:0"`
	ReviewCount int       `json:"review_count" gorm:"not null;default:0"`
}

// TableName указывает имя таблицы для GORM
func (Service) TableName() string {
	return "services"
}

// MarketplaceEvent - общий конверт событий маркетплейса
// Worker различает события по полю event_type
type MarketplaceEvent struct {
	EventType string    `json:"event_type"`
	ReviewID  uuid.UUID `json:"review_id,omitempty"`
	ServiceID uuid.UUID `json:"service_id,omitempty"`
	UserID    uuid.UUID `json:"user_id,omitempty"`
	AuthorID  uuid.UUID `json:"author_id,omitempty"`
	Rating    int       `json:"rating,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventReviewCreated  = "REVIEW_CREATED"
	EventReviewDeleted  = "REVIEW_DELETED"
	EventServiceDeleted = "SERVICE_DELETED"
	EventUserDeleted    = "USER_DELETED"
)
