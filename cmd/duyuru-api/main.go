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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/duyuru-api/api/swagger"
	"github.com/noah-isme/duyuru-api/internal/handler"
	internalmiddleware "github.com/noah-isme/duyuru-api/internal/middleware"
	"github.com/noah-isme/duyuru-api/internal/repository"
	"github.com/noah-isme/duyuru-api/internal/service"
	"github.com/noah-isme/duyuru-api/pkg/cache"
	"github.com/noah-isme/duyuru-api/pkg/config"
	"github.com/noah-isme/duyuru-api/pkg/database"
	"github.com/noah-isme/duyuru-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/duyuru-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/duyuru-api/pkg/middleware/requestid"
)

// @title Duyuru API
// @version 1.0.0
// @description Department-scoped announcement board with read receipts and reporting
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	var cacheRepo service.CacheRepository
	if cfg.Reports.CacheEnabled {
		redisClient, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, report cache disabled", zap.Error(err))
		} else {
			redisCache := repository.NewCacheRepository(redisClient, "duyuru:", logr)
			defer redisCache.Close() //nolint:errcheck
			cacheRepo = redisCache
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Reports.CacheTTL, logr, cacheRepo != nil)

	userRepo := repository.NewUserRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	receiptRepo := repository.NewReadReceiptRepository(db)
	reportRepo := repository.NewReportRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, metricsSvc, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	announcementSvc := service.NewAnnouncementService(announcementRepo, receiptRepo, departmentRepo, cacheSvc, metricsSvc, validate, logr)
	reportSvc := service.NewReportService(reportRepo, cacheSvc, cfg.Activity.Limit, logr)
	departmentSvc := service.NewDepartmentService(departmentRepo)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	requireSession := internalmiddleware.JWT(authSvc, internalmiddleware.OnExpired(func(c *gin.Context, err error) {
		logr.Info("expired session token", zap.String("path", c.FullPath()), zap.Error(err))
	}))

	handler.RegisterRoutes(r, handler.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Departments:   handler.NewDepartmentHandler(departmentSvc),
		Announcements: handler.NewAnnouncementHandler(announcementSvc),
		Reports:       handler.NewReportHandler(reportSvc),
		Activity:      handler.NewActivityHandler(reportSvc),
		Metrics:       handler.NewMetricsHandler(metricsSvc, db),
	}, requireSession, cfg.Metrics.Enabled)

	if cfg.Env != config.EnvProduction && cfg.Swagger.Enabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "report_cache", cacheSvc.Enabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
