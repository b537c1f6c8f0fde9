package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"servicehub/marketplace-service/internal/app/marketplace/config"
	"servicehub/marketplace-service/internal/app/marketplace/entity"
	"servicehub/marketplace-service/internal/app/marketplace/handler"
	"servicehub/marketplace-service/internal/app/marketplace/repository"
	"servicehub/marketplace-service/internal/app/marketplace/service"
	"servicehub/marketplace-service/internal/app/marketplace/util"
	"servicehub/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init("marketplace-service", logLevel)

	logstashAddr := os.Getenv("LOGSTASH_ADDR")
	if logstashAddr != "" {
		if err := logger.InitLogstash(logstashAddr, "marketplace-service", logLevel); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", logstashAddr).Msg("Connected to Logstash")
		}
	}

	// === ПОДКЛЮЧЕНИЕ К POSTGRESQL ===
	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	logger.Info().Str("database", cfg.Database.DBName).Msg("Connected to PostgreSQL")

	// Миграция схемы: пользователи, услуги, отзывы
	// Вместе со схемой создаются FK и уникальный индекс (author_id, service_id)
	if err := db.AutoMigrate(&entity.User{}, &entity.Service{}, &entity.Review{}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate database schema")
	}

	// === ПОДКЛЮЧЕНИЕ К REDIS ===
	// Redis кеширует топ услуг по отзывам
	redisClient, err := util.NewRedisClient(
		cfg.Redis.Address(),
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Str("address", cfg.Redis.Address()).Msg("Connected to Redis")

	// === ИНИЦИАЛИЗАЦИЯ KAFKA PRODUCERS ===
	// События отзывов и события услуг/пользователей идут в разные топики,
	// background worker подписан на оба
	reviewsProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.ReviewsTopic)
	defer reviewsProducer.Close()
	servicesProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.ServicesTopic)
	defer servicesProducer.Close()
	logger.Info().
		Str("reviews_topic", cfg.Kafka.ReviewsTopic).
		Str("services_topic", cfg.Kafka.ServicesTopic).
		Msg("Initialized Kafka producers")

	// === ИНИЦИАЛИЗАЦИЯ СЛОЯ РЕПОЗИТОРИЕВ ===
	userRepo := repository.NewUserRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	cascadeRepo := repository.NewCascadeRepository(db)

	// === ИНИЦИАЛИЗАЦИЯ БИЗНЕС-ЛОГИКИ ===
	catalogService := service.NewCatalogService(serviceRepo, reviewRepo, cascadeRepo, redisClient, servicesProducer)
	reviewService := service.NewReviewService(reviewRepo, serviceRepo, redisClient, reviewsProducer)
	rankingService := service.NewRankingService(
		serviceRepo,
		reviewRepo,
		redisClient,
		cfg.Ranking.Window(),
		cfg.Ranking.TopN,
		cfg.Redis.TopTTL,
	)
	userService := service.NewUserService(userRepo, cascadeRepo, redisClient, servicesProducer)

	// === ИНИЦИАЛИЗАЦИЯ HTTP HANDLERS ===
	jwtManager := util.NewJWTManager(cfg.JWT.Secret)
	authMiddleware := handler.NewAuthMiddleware(jwtManager)
	serviceHandler := handler.NewServiceHandler(catalogService, rankingService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	adminHandler := handler.NewAdminHandler(catalogService, userService)

	router := handler.SetupRoutes(serviceHandler, reviewHandler, adminHandler, authMiddleware)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("Starting Marketplace Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Marketplace Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Marketplace Service stopped gracefully")
}

// connectDB устанавливает соединение с PostgreSQL используя GORM
// Retry logic для устойчивости при запуске в Docker
func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else if pingErr := sqlDB.Ping(); pingErr != nil {
				err = pingErr
			} else {
				sqlDB.SetMaxOpenConns(25)
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
				sqlDB.SetConnMaxIdleTime(1 * time.Minute)
				return db, nil
			}
		}
		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to database, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}
