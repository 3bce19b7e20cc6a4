package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/kelaskita/timetable-engine/api/swagger"
	"github.com/kelaskita/timetable-engine/internal/handler"
	"github.com/kelaskita/timetable-engine/internal/middleware"
	"github.com/kelaskita/timetable-engine/internal/service"
	"github.com/kelaskita/timetable-engine/pkg/config"
	"github.com/kelaskita/timetable-engine/pkg/jobs"
	"github.com/kelaskita/timetable-engine/pkg/logger"
	corsmiddleware "github.com/kelaskita/timetable-engine/pkg/middleware/cors"
	reqidmiddleware "github.com/kelaskita/timetable-engine/pkg/middleware/requestid"
)

// @title Timetable Engine API
// @version 1.0.0
// @description Weekly school timetable scheduling engine
// @BasePath /
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

	metrics := service.NewMetricsService()
	tracker := service.NewProgressTracker()
	cache := service.NewScheduleCache(cfg.Cache.Capacity, cfg.Cache.TTL)

	pool := jobs.NewPool("scheduler", jobs.PoolConfig{
		Workers:    cfg.Scheduler.Workers,
		BufferSize: cfg.Scheduler.QueueBuffer,
		Logger:     logr,
	})
	pool.Start(context.Background())
	defer pool.Stop()

	exact := service.NewExactEngine(cfg.Scheduler.SolverTimeLimit, cfg.Scheduler.SolverGapRel, tracker, logr)
	greedy := service.NewGreedyScheduler(tracker, logr)
	scheduler := service.NewSchedulerService(cache, tracker, exact, greedy, pool, metrics, validator.New(), logr, cfg.Scheduler)
	scheduleHandler := handler.NewScheduleHandler(scheduler)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "timetable-engine"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.POST("/schedule", scheduleHandler.Compute)
	r.GET("/schedule/progress", scheduleHandler.Progress)
	r.GET("/schedule/sample", scheduleHandler.Sample)
	r.POST("/schedule/export", scheduleHandler.Export)
	r.GET("/cache/status", scheduleHandler.CacheStatus)
	r.POST("/cache/clear", scheduleHandler.CacheClear)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
