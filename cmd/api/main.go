package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/course-backoffice-api/api/swagger"
	"github.com/noah-isme/course-backoffice-api/internal/handler"
	"github.com/noah-isme/course-backoffice-api/internal/integration/autopilot"
	"github.com/noah-isme/course-backoffice-api/internal/integration/google"
	"github.com/noah-isme/course-backoffice-api/internal/integration/soho"
	"github.com/noah-isme/course-backoffice-api/internal/integration/telegram"
	"github.com/noah-isme/course-backoffice-api/internal/repository"
	"github.com/noah-isme/course-backoffice-api/internal/service"
	"github.com/noah-isme/course-backoffice-api/pkg/cache"
	"github.com/noah-isme/course-backoffice-api/pkg/config"
	"github.com/noah-isme/course-backoffice-api/pkg/database"
	"github.com/noah-isme/course-backoffice-api/pkg/jobs"
	"github.com/noah-isme/course-backoffice-api/pkg/logger"
)

// @title Course Backoffice API
// @version 1.0.0
// @description Back-office control plane: enrollment, teacher assignment and homework distribution
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
		redisClient = nil
	}

	googleClient, err := google.NewClient(cfg.Google)
	if err != nil {
		logr.Sugar().Fatalw("failed to init google client", "error", err)
	}
	sohoClient := soho.NewClient(cfg.Soho)
	autopilotClient := autopilot.NewClient()
	telegramClient := telegram.NewClient(cfg.Telegram)

	factory := repository.NewFactory(db)
	users := repository.NewUserRepository(db)
	subjects := repository.NewSubjectRepository(db)
	products := repository.NewProductRepository(db)
	teacherProducts := repository.NewTeacherProductRepository(db)
	catalogCache := repository.NewCacheRepository(redisClient)

	notifier := service.NewNotifier(autopilotClient, telegramClient, cfg.Workers.SideEffectWorkers, logr)
	notifier.Start(context.Background())
	defer notifier.Stop()

	pool := jobs.NewPool(cfg.Workers.PoolSize)

	metrics := service.NewMetricsService()
	auth := service.NewAuthService(users, cfg.SecretKey, cfg.Auth.TokenExpiration, logr)
	enroller := service.NewEnrollerService(factory, notifier, logr)
	expulsion := service.NewExpulsionService(factory, logr)
	distributor := service.NewDistributorService(factory, sohoClient, googleClient, pool, logr)
	catalog := service.NewCatalogService(subjects, products, teacherProducts, catalogCache, cfg.Catalog.CacheTTL, logr)
	exporter := service.NewExportService()

	router := handler.NewRouter(handler.RouterDeps{
		Config:        cfg,
		Logger:        logr,
		Auth:          auth,
		Metrics:       metrics,
		Students:      handler.NewStudentHandler(enroller, expulsion, metrics),
		Catalog:       handler.NewCatalogHandler(catalog),
		Distributions: handler.NewDistributionHandler(distributor, exporter, metrics),
		AuthHandler:   handler.NewAuthHandler(auth),
		Monitoring:    handler.NewMonitoringHandler(db, metrics),
	})

	if cfg.Env != config.EnvProduction {
		router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := router.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
