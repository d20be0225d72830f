package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/schoolops/presence-api/api/swagger"
	"github.com/schoolops/presence-api/internal/handler"
	"github.com/schoolops/presence-api/internal/hub"
	"github.com/schoolops/presence-api/internal/middleware"
	"github.com/schoolops/presence-api/internal/notify"
	"github.com/schoolops/presence-api/internal/repository"
	"github.com/schoolops/presence-api/internal/service"
	"github.com/schoolops/presence-api/pkg/cache"
	"github.com/schoolops/presence-api/pkg/config"
	"github.com/schoolops/presence-api/pkg/database"
	"github.com/schoolops/presence-api/pkg/logger"
	corsmiddleware "github.com/schoolops/presence-api/pkg/middleware/cors"
	reqidmiddleware "github.com/schoolops/presence-api/pkg/middleware/requestid"
	"github.com/schoolops/presence-api/pkg/storage"
)

// @title School Presence API
// @version 1.0.0
// @description Attendance, timetable and live presence backend
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg.Env, cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck
	sugar := logr.Sugar()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		sugar.Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.Database); err != nil {
		sugar.Fatalw("migrations failed", "error", err)
	}

	var cacheRepo *repository.CacheRepository
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		sugar.Warnw("redis unavailable, token cache disabled", "error", err)
	} else {
		defer redisClient.Close()
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}

	archive, err := storage.NewArchive(cfg.School.ReportDir)
	if err != nil {
		sugar.Fatalw("report archive init failed", "error", err)
	}

	validate := validator.New()
	now := time.Now

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	classRepo := repository.NewClassRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	presenceRepo := repository.NewPresenceRepository(db)

	metricsSvc := service.NewMetricsService()

	authCfg := service.AuthServiceConfig{
		TokenLength:   cfg.Auth.TokenLength,
		TokenTTL:      cfg.Auth.TokenTTL,
		TokenCacheTTL: cfg.Auth.TokenCacheTTL,
		BcryptCost:    cfg.Auth.BcryptCost,
	}
	var authSvc *service.AuthService
	if cacheRepo != nil {
		authSvc = service.NewAuthService(userRepo, tokenRepo, cacheRepo, logr, authCfg)
	} else {
		authSvc = service.NewAuthService(userRepo, tokenRepo, nil, logr, authCfg)
	}

	scheduleSvc := service.NewScheduleService(timetableRepo, int(cfg.School.PeriodLength.Minutes()), logr)

	liveHub := hub.New(hub.Config{
		WriteTimeout: cfg.Hub.WriteTimeout,
		PingInterval: cfg.Hub.PingInterval,
		ReadLimit:    cfg.Hub.ReadLimit,
	}, metricsSvc, logr)

	dispatcher := notify.NewDispatcher(liveHub, notify.Config{}, logr)
	serverCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()
	dispatcher.Start(serverCtx)

	presenceSvc := service.NewPresenceService(presenceRepo, enrollmentRepo, scheduleSvc, dispatcher, logr)
	userSvc := service.NewUserService(userRepo, validate, logr)
	classSvc := service.NewClassService(classRepo, enrollmentRepo, userRepo, validate, logr)
	timetableSvc := service.NewTimetableService(timetableRepo, validate, logr)

	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r, cfg.APIPrefix, authSvc, handler.Handlers{
		Auth:      handler.NewAuthHandler(authSvc),
		Me:        handler.NewMeHandler(presenceSvc, now),
		Class:     handler.NewClassHandler(classSvc, presenceSvc, scheduleSvc, archive, logr, now),
		User:      handler.NewUserHandler(userSvc),
		Timetable: handler.NewTimetableHandler(timetableSvc, scheduleSvc, now),
		Live:      handler.NewLiveHandler(liveHub, authSvc, presenceSvc, logr, now),
		Metrics:   metricsHandler,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		sugar.Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	<-serverCtx.Done()
	sugar.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("graceful shutdown failed", "error", err)
	}

	liveHub.Close()
	dispatcher.Stop()
}
