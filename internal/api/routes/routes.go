package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/equipstore/backend/internal/api/handlers"
	"github.com/equipstore/backend/internal/api/middleware"
	"github.com/equipstore/backend/internal/config"
	"github.com/equipstore/backend/internal/database"
	"github.com/equipstore/backend/internal/metrics"
	"github.com/equipstore/backend/internal/models"
	"github.com/equipstore/backend/internal/services"
)

// Register migrates the schema, wires every API route and returns the
// activity monitor for the caller to start and stop.
func Register(router *gin.Engine, db *gorm.DB, cfg *config.Config, reg *prometheus.Registry) (*services.ActivityMonitor, error) {
	if err := database.Migrate(db); err != nil {
		return nil, err
	}

	if reg != nil {
		metrics.Register(reg)
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	}

	// Monitoring
	registry := services.NewMonitoredUserRegistry(db)
	evaluator, err := services.NewSuspicionEvaluator(db, registry, services.EvaluatorConfig{
		Window:       cfg.Monitoring.Window,
		Threshold:    cfg.Monitoring.Threshold,
		Reason:       cfg.Monitoring.Reason,
		QueryTimeout: cfg.Monitoring.QueryTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("suspicion evaluator: %w", err)
	}
	monitor := services.NewActivityMonitor(evaluator, services.MonitorOptions{
		Interval:   cfg.Monitoring.Interval,
		RunOnStart: cfg.Monitoring.RunOnStart,
	})
	monitoringHandler := handlers.NewMonitoringHandler(services.NewMonitoringService(db, registry), monitor)

	authService := services.NewAuthService(db, cfg.Auth)
	authHandler := handlers.NewAuthHandler(authService, cfg.Auth.TokenTTL, cfg.IsProduction())
	authMiddleware := middleware.AuthMiddleware(authService)

	equipmentService := services.NewEquipmentService(db)
	oplog := services.NewOperationLogService(db, cfg.Monitoring.LogWriteTimeout)
	equipmentHandler := handlers.NewEquipmentHandler(equipmentService, oplog)
	categoryHandler := handlers.NewCategoryHandler(equipmentService)

	router.GET("/api/health", handlers.HealthHandler)

	api := router.Group("/api")

	authGroup := api.Group("/auth", middleware.CORS(http.MethodGet, http.MethodPost, http.MethodOptions))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", authMiddleware, authHandler.Me)
		authGroup.OPTIONS("/*path", noContent)
	}

	equipment := api.Group("/equipment", middleware.CORS(
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions))
	{
		equipment.GET("", equipmentHandler.List)
		equipment.POST("", authMiddleware, equipmentHandler.Create)
		equipment.PUT("", authMiddleware, equipmentHandler.Update)
		equipment.DELETE("", authMiddleware, equipmentHandler.Delete)
		equipment.POST("/filter", equipmentHandler.Filter)
		equipment.OPTIONS("", noContent)
		equipment.OPTIONS("/filter", noContent)
	}

	categories := api.Group("/categories", middleware.CORS(http.MethodGet, http.MethodOptions))
	{
		categories.GET("", categoryHandler.List)
		categories.GET("/statistics", categoryHandler.Statistics)
		categories.OPTIONS("", noContent)
		categories.OPTIONS("/statistics", noContent)
	}

	// The admin listing carries no authentication.
	admin := api.Group("/admin", middleware.CORS(http.MethodGet, http.MethodOptions))
	{
		admin.GET("/monitored-users", monitoringHandler.MonitoredUsers)
		admin.OPTIONS("/monitored-users", noContent)
	}

	monitoring := api.Group("/monitoring",
		middleware.CORS(http.MethodGet, http.MethodPost, http.MethodOptions),
		middleware.OptionalAuth(authService))
	{
		monitoring.GET("", monitoringHandler.Monitoring)
		monitoring.POST("/run", authMiddleware, middleware.RequireRole(models.RoleAdmin), monitoringHandler.RunEvaluation)
		monitoring.OPTIONS("", noContent)
		monitoring.OPTIONS("/run", noContent)
	}

	return monitor, nil
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
