package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Ranking  RankingConfig
}

type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 8080)
}

type DatabaseConfig struct {
	Host     string // Хост PostgreSQL
	Port     string // Порт PostgreSQL
	User     string // Имя пользователя БД
	Password string // Пароль БД
	DBName   string // Имя базы данных
	SSLMode  string // Режим SSL (disable/require/verify-full)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TopTTL   time.Duration // TTL кеша топа услуг
}

type KafkaConfig struct {
	Brokers       []string // Список брокеров Kafka (формат: host:port)
	ReviewsTopic  string   // Топик событий отзывов
	ServicesTopic string   // Топик событий услуг и пользователей
}

type JWTConfig struct {
	Secret string // Секретный ключ для проверки JWT токенов (должен совпадать с auth-контуром)
}

type RankingConfig struct {
	WindowDays int // Окно агрегации отзывов в днях
	TopN       int // Размер топа
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
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
			DB:       getEnvInt("REDIS_DB", 0),
			TopTTL:   time.Duration(getEnvInt("REDIS_TOP_TTL_SECONDS", 300)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ReviewsTopic:  getEnv("KAFKA_REVIEWS_TOPIC", "review_events"),
			ServicesTopic: getEnv("KAFKA_SERVICES_TOPIC", "service_events"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		},
		Ranking: RankingConfig{
			WindowDays: getEnvInt("RANKING_WINDOW_DAYS", 30),
			TopN:       getEnvInt("RANKING_TOP_N", 3),
		},
	}

	// Параметры ранжирования проверяем до старта сервиса,
	// чтобы некорректное окно не дошло до запросов в БД
	if cfg.Ranking.WindowDays <= 0 {
		return nil, fmt.Errorf("invalid RANKING_WINDOW_DAYS: must be positive, got %d", cfg.Ranking.WindowDays)
	}
	if cfg.Ranking.TopN <= 0 {
		return nil, fmt.Errorf("invalid RANKING_TOP_N: must be positive, got %d", cfg.Ranking.TopN)
	}

	return cfg, nil
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// DSN возвращает строку подключения для GORM postgres driver
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Window возвращает окно агрегации как time.Duration
func (c *RankingConfig) Window() time.Duration {
	return time.Duration(c.WindowDays) * 24 * time.Hour
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
