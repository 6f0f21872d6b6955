package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/campusdocs/admp-api/api/swagger"
	"github.com/campusdocs/admp-api/internal/handler"
	"github.com/campusdocs/admp-api/internal/middleware"
	"github.com/campusdocs/admp-api/internal/models"
	"github.com/campusdocs/admp-api/internal/repository"
	"github.com/campusdocs/admp-api/internal/service"
	"github.com/campusdocs/admp-api/pkg/cache"
	"github.com/campusdocs/admp-api/pkg/config"
	"github.com/campusdocs/admp-api/pkg/database"
	"github.com/campusdocs/admp-api/pkg/logger"
	corsmiddleware "github.com/campusdocs/admp-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusdocs/admp-api/pkg/middleware/requestid"
)

// @title Academic Document Management Portal API
// @version 1.0.0
// @description Role-gated document cataloguing API for an academic institution
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Stats.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, stats cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Stats.CacheTTL, logr, cacheRepo != nil)

	store := repository.NewStoreRepository(db, metricsSvc)
	validate := validator.New()

	activitySvc := service.NewActivityService(store, logr)
	authSvc := service.NewAuthService(store, activitySvc, validate, logr, service.SessionTokenConfig{
		Secret:     cfg.Session.Secret,
		Expiration: cfg.Session.Expiration,
		Issuer:     cfg.Session.Issuer,
	})
	documentSvc := service.NewDocumentService(store, activitySvc, cacheSvc, validate, logr, service.DocumentServiceConfig{
		SimulatedDelay:   cfg.Uploads.SimulatedDelay,
		MaxFileSizeBytes: cfg.Uploads.MaxFileSizeBytes,
	})
	statsSvc := service.NewStatsService(store, cacheSvc, logr, cfg.Stats.CacheTTL)
	userSvc := service.NewUserService(store, activitySvc, validate, logr)
	adminSvc := service.NewAdminService(store, activitySvc, authSvc, cacheSvc, logr)

	bootCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authSvc.Bootstrap(bootCtx); err != nil {
		cancel()
		logr.Sugar().Fatalw("failed to seed bootstrap accounts", "error", err)
	}
	cancel()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(authSvc)
	documentHandler := handler.NewDocumentHandler(documentSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)
	activityHandler := handler.NewActivityHandler(activitySvc)
	userHandler := handler.NewUserHandler(userSvc)
	adminHandler := handler.NewAdminHandler(adminSvc)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.Session(authSvc))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/auth/me", authHandler.Me)

		protected.GET("/documents", documentHandler.List)
		protected.POST("/documents", documentHandler.Upload)
		protected.PATCH("/documents/:id", documentHandler.Update)
		protected.DELETE("/documents/:id", documentHandler.Delete)
		protected.GET("/documents/folders", documentHandler.Folders)

		protected.GET("/stats/overview", statsHandler.Overview)
		protected.GET("/stats/distribution", statsHandler.Distribution)
		protected.GET("/stats/trend", statsHandler.Trend)
		protected.GET("/stats/leaderboard", statsHandler.Leaderboard)
		protected.GET("/stats/export", statsHandler.Export)

		protected.PATCH("/users/me", userHandler.UpdateProfile)
	}

	adminOnly := protected.Group("")
	adminOnly.Use(middleware.RBAC(models.RoleAdmin))
	{
		adminOnly.GET("/activity", activityHandler.List)
		adminOnly.GET("/users", userHandler.List)
		adminOnly.POST("/users", userHandler.Create)
		adminOnly.POST("/admin/seed-demo", adminHandler.SeedDemo)
		adminOnly.POST("/admin/reset", adminHandler.Reset)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
