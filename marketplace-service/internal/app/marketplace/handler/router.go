package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"servicehub/marketplace-service/internal/app/marketplace/entity"
	"servicehub/pkg/logger"
	"servicehub/pkg/metrics"
)

// SetupRoutes настраивает все маршруты Marketplace Service
// Публичный каталог доступен без токена, изменяющие операции защищены JWT
func SetupRoutes(
	serviceHandler *ServiceHandler,
	reviewHandler *ReviewHandler,
	adminHandler *AdminHandler,
	authMiddleware *AuthMiddleware,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов (ELK Stack)
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("marketplace-service"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint - публичный, без аутентификации
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "marketplace-service",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	services := router.Group("/services")
	{
		// Публичные эндпоинты каталога
		services.GET("", serviceHandler.GetServices)              // Одобренные услуги, фильтр ?category=
		services.GET("/top", serviceHandler.GetTopServices)       // Топ услуг по отзывам за окно
		services.GET("/featured", serviceHandler.GetFeaturedServices)
		services.GET("/search", serviceHandler.SearchServices)    // Поиск ?q=

		// Эндпоинты поставщика - до /:id, иначе gin примет "my" за ID
		services.GET("/my",
			authMiddleware.Authenticate(),
			authMiddleware.RequireRole(entity.RoleProvider, entity.RoleAdmin),
			serviceHandler.GetMyServices,
		)
		services.GET("/my/:id",
			authMiddleware.Authenticate(),
			authMiddleware.RequireRole(entity.RoleProvider, entity.RoleAdmin),
			serviceHandler.GetMyService, // Своя услуга любого статуса модерации
		)
		services.POST("",
			authMiddleware.Authenticate(),
			authMiddleware.RequireRole(entity.RoleProvider, entity.RoleAdmin),
			serviceHandler.CreateService,
		)

		services.GET("/:id", serviceHandler.GetService)
		services.GET("/:id/reviews", reviewHandler.GetServiceReviews)

		// Владелец или админ (проверка владения в service layer)
		services.PUT("/:id", authMiddleware.Authenticate(), serviceHandler.UpdateService)
		services.DELETE("/:id", authMiddleware.Authenticate(), serviceHandler.DeleteService) // Каскадное удаление с отзывами

		// Отзыв может оставить любой аутентифицированный пользователь
		services.POST("/:id/reviews", authMiddleware.Authenticate(), reviewHandler.CreateReview)
	}

	reviews := router.Group("/reviews")
	reviews.Use(authMiddleware.Authenticate())
	{
		reviews.GET("/my", reviewHandler.GetMyReviews)
	}

	users := router.Group("/users")
	users.Use(authMiddleware.Authenticate())
	{
		// Сам пользователь или админ, каскадное удаление профиля
		users.DELETE("/:id", adminHandler.DeleteUser)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware.Authenticate(), authMiddleware.RequireRole(entity.RoleAdmin))
	{
		admin.GET("/services", adminHandler.GetAllServices)              // Услуги всех статусов
		admin.GET("/services/:id", adminHandler.GetServiceByID)          // Услуга любого статуса с отзывами
		admin.PUT("/services/:id/approve", adminHandler.ApproveService)  // Публикация
		admin.PUT("/services/:id/reject", adminHandler.RejectService)    // Отклонение
		admin.PUT("/services/:id/featured", adminHandler.SetFeatured)    // Флаг избранного
		admin.GET("/users", adminHandler.GetAllUsers)
		admin.PUT("/users/:id/promote", adminHandler.PromoteUser)
	}

	return router
}
