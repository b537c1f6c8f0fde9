package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config содержит все настройки Background Worker Service
// Worker слушает события отзывов и услуг и поддерживает
// денормализованные агрегаты рейтинга в БД маркетплейса
type Config struct {
	Database     DatabaseConfig
	Redis        RedisConfig
	Kafka        KafkaConfig
	CronSchedule CronScheduleConfig
}

// DatabaseConfig - настройки подключения к PostgreSQL маркетплейса
// Worker пишет в те же таблицы services/reviews
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig - настройки подключения к Redis
// Worker инвалидирует кеш топа услуг при изменении агрегатов
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// KafkaConfig - настройки Kafka для подписки на события
type KafkaConfig struct {
	Brokers       []string // Список брокеров Kafka (формат: host:port)
	ReviewsTopic  string   // Топик событий отзывов (review_events)
	ServicesTopic string   // Топик событий услуг и пользователей (service_events)
	GroupID       string   // ID группы потребителей
	MinBytes      int
	MaxBytes      int
}

// CronScheduleConfig - расписание cron задач
type CronScheduleConfig struct {
	Reconcile string // Расписание полной сверки агрегатов рейтинга
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "marketplace"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0), // Та же БД что у маркетплейса - общий ключ кеша
		},
		Kafka: KafkaConfig{
			Brokers:       []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ReviewsTopic:  getEnv("KAFKA_REVIEWS_TOPIC", "review_events"),
			ServicesTopic: getEnv("KAFKA_SERVICES_TOPIC", "service_events"),
			GroupID:       getEnv("KAFKA_GROUP_ID", "background-worker-group"),
			MinBytes:      getEnvInt("KAFKA_MIN_BYTES", 1),
			MaxBytes:      getEnvInt("KAFKA_MAX_BYTES", 10e6),
		},
		CronSchedule: CronScheduleConfig{
			// Полная сверка агрегатов раз в час: подчищает расхождения
			// после потерянных или задублированных событий
			Reconcile: getEnv("CRON_RECONCILE", "0 0 * * * *"),
		},
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Address возвращает адрес Redis в формате host:port
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
