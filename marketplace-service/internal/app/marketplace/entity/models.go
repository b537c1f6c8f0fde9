package entity

import (
	"time"

	"github.com/google/uuid"
)

// Role представляет роль пользователя в маркетплейсе
type Role string

const (
	RoleUser     Role = "USER"     // Обычный пользователь, может оставлять отзывы
	RoleProvider Role = "PROVIDER" // Поставщик, размещает услуги
	RoleAdmin    Role = "ADMIN"    // Администратор, модерирует каталог
)

// ApprovalStatus представляет статус модерации услуги
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"  // Ожидает модерации
	ApprovalApproved ApprovalStatus = "APPROVED" // Опубликована
	ApprovalRejected ApprovalStatus = "REJECTED" // Отклонена
)

// User представляет пользователя маркетплейса
// Пароли и сессии живут в отдельном auth-контуре, этот сервис хранит только профиль
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null;default:'USER'"`
	Phone     *string   `json:"phone,omitempty" gorm:"type:varchar(50)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// Service представляет услугу в каталоге
// Rating и ReviewCount - денормализованные агрегаты, их поддерживает background worker
type Service struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	Name           string         `json:"name" gorm:"type:varchar(255);not null"`
	Description    string         `json:"description" gorm:"type:text;not null"`
	Category       string         `json:"category" gorm:"type:varchar(100);not null;index"`
	Location       *string        `json:"location,omitempty" gorm:"type:varchar(255)"`
	VideoURL       *string        `json:"video_url,omitempty" gorm:"type:varchar(512)"`
	Rating         float64        `json:"rating" gorm:"type:decimal(3,2);not null;default:0"`
	ReviewCount    int            `json:"review_count" gorm:"not null;default:0"`
	Featured       bool           `json:"featured" gorm:"not null;default:false"`
	ApprovalStatus ApprovalStatus `json:"approval_status" gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ProviderID     uuid.UUID      `json:"provider_id" gorm:"type:uuid;not null;index"`
	Provider       *User          `json:"-" gorm:"foreignKey:ProviderID"`
	CreatedAt      time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы для GORM
func (Service) TableName() string {
	return "services"
}

// Review представляет отзыв на услугу
// Уникальный индекс (author_id, service_id) гарантирует один отзыв на услугу от пользователя
// FK reviews.service_id -> services.id без ON DELETE CASCADE: удалением отзывов
// управляет транзакция каскада, а FK отбивает вставку отзыва параллельно с ней
type Review struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Rating    int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment   string    `json:"comment" gorm:"type:text;not null"`
	AuthorID  uuid.UUID `json:"author_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_author_service"`
	ServiceID uuid.UUID `json:"service_id" gorm:"type:uuid;not null;uniqueIndex:idx_reviews_author_service;index"`
	Author    *User     `json:"-" gorm:"foreignKey:AuthorID"`
	Service   *Service  `json:"-" gorm:"foreignKey:ServiceID"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы для GORM
func (Review) TableName() string {
	return "reviews"
}

// ReviewAggregate представляет агрегат отзывов одной услуги за окно времени
type ReviewAggregate struct {
	ServiceID   uuid.UUID `json:"service_id"`
	AvgRating   float64   `json:"avg_rating"`
	ReviewCount int       `json:"review_count"`
}

// RankedAggregate представляет агрегат с рассчитанным скором и позицией в топе
type RankedAggregate struct {
	ReviewAggregate
	Score float64 `json:"score"` // AvgRating * ReviewCount
	Rank  int     `json:"rank"`  // Позиция в топе, начиная с 1
}

// ReviewEvent представляет событие отзыва для Kafka
type ReviewEvent struct {
	EventType string    `json:"event_type"` // REVIEW_CREATED, REVIEW_DELETED
	ReviewID  uuid.UUID `json:"review_id"`
	ServiceID uuid.UUID `json:"service_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

// ServiceEvent представляет событие услуги для Kafka
type ServiceEvent struct {
	EventType  string    `json:"event_type"` // SERVICE_DELETED
	ServiceID  uuid.UUID `json:"service_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// UserEvent представляет событие пользователя для Kafka
type UserEvent struct {
	EventType string    `json:"event_type"` // USER_DELETED
	UserID    uuid.UUID `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventReviewCreated  = "REVIEW_CREATED"
	EventReviewDeleted  = "REVIEW_DELETED"
	EventServiceDeleted = "SERVICE_DELETED"
	EventUserDeleted    = "USER_DELETED"
)
