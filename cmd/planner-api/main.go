package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/study-planner-api/api/swagger"
	"github.com/noah-isme/study-planner-api/internal/handler"
	internalmiddleware "github.com/noah-isme/study-planner-api/internal/middleware"
	"github.com/noah-isme/study-planner-api/internal/repository"
	"github.com/noah-isme/study-planner-api/internal/service"
	"github.com/noah-isme/study-planner-api/pkg/cache"
	"github.com/noah-isme/study-planner-api/pkg/config"
	"github.com/noah-isme/study-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/study-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/study-planner-api/pkg/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

// @title Study Planner API
// @version 1.0.0
// @description Deterministic study timetable generation.
// @BasePath /api
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsSvc := service.NewMetricsService()

	var redisClient *redis.Client
	if cfg.PlanCache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("plan cache disabled, redis unavailable", zap.Error(err))
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.PlanCache.TTL, logr, cfg.PlanCache.Enabled && redisClient != nil)

	planSvc := service.NewStudyPlanService(nil, cacheSvc, metricsSvc, service.NewPlanExporter(nil, nil), logr, service.StudyPlanConfig{
		MaxDays:          cfg.Planner.MaxDays,
		MaxSubjects:      cfg.Planner.MaxSubjects,
		MaxBatch:         cfg.Planner.MaxBatch,
		BatchConcurrency: cfg.Planner.BatchConcurrency,
		Timeout:          cfg.Planner.Timeout,
		CacheTTL:         cfg.PlanCache.TTL,
	})

	planHandler := handler.NewStudyPlanHandler(planSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, cacheSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithRequestTiming())

	r.GET("/", metricsHandler.Status)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	api.POST("/study-plan", planHandler.Generate)
	api.POST("/study-plan/batch", planHandler.Batch)
	api.POST("/study-plan/export", planHandler.Export)
	api.DELETE("/study-plan/cache", planHandler.FlushCache)

	if cfg.Docs.Enabled {
		swagger.SetBasePath(cfg.APIPrefix)
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Planner.Timeout + 15*time.Second,
	}

	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.Bool("plan_cache", cacheSvc.Enabled()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
