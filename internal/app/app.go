package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/the-lucky-clover/agentcy-one/docs"
	"github.com/the-lucky-clover/agentcy-one/internal/authz"
	"github.com/the-lucky-clover/agentcy-one/internal/config"
	"github.com/the-lucky-clover/agentcy-one/internal/handlers"
	"github.com/the-lucky-clover/agentcy-one/internal/middleware"
	"github.com/the-lucky-clover/agentcy-one/internal/migrations"
	"github.com/the-lucky-clover/agentcy-one/internal/providers"
	"github.com/the-lucky-clover/agentcy-one/internal/repositories"
	"github.com/the-lucky-clover/agentcy-one/internal/routes"
	"github.com/the-lucky-clover/agentcy-one/internal/services"
	"github.com/the-lucky-clover/agentcy-one/internal/storage"
)

func Run() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("[app] config: %v", err)
	}
	setupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("[app] open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("[app] close database: %v", err)
		}
	}()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("[app] ping database: %v", err)
	}
	if cfg.Database.AutoMigrate {
		if err := migrations.Apply(ctx, db); err != nil {
			log.Fatalf("[app] migrate: %v", err)
		}
	}

	// === Blob store ===
	minioClient, err := storage.NewMinioClient(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("[app] storage: %v", err)
	}
	store := storage.NewArtifactStore(minioClient, cfg.Storage.Bucket, cfg.Storage.Namespace, cfg.Storage.PublicBaseURL)

	// === Providers ===
	chain := providers.NewChain(
		providers.NewHTTPProvider(cfg.Providers.Primary.URL, cfg.Providers.Primary.APIKey, cfg.Providers.Primary.Timeout),
		providers.NewModelProvider(cfg.Providers.Fallback.BaseURL, cfg.Providers.Fallback.APIKey,
			cfg.Providers.Fallback.Model, cfg.Providers.Fallback.Timeout),
	)

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	generationRepo := repositories.NewGenerationRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	deploymentRepo := repositories.NewDeploymentRepository(db)
	subscriptionRepo := repositories.NewSubscriptionRepository(db)
	analyticsRepo := repositories.NewAnalyticsRepository(db)
	verificationRepo := repositories.NewEmailVerificationRepository(db)
	resetRepo := repositories.NewPasswordResetRepository(db)

	// === Services ===
	signer := authz.NewSigner(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL)
	authService := services.NewAuthService(signer, cfg.Auth.RefreshTTL)
	emailService := services.NewEmailService(cfg.Email)
	analyticsService := services.NewAnalyticsService(analyticsRepo)
	verificationService := services.NewVerificationService(userRepo, verificationRepo, emailService)
	userService := services.NewUserService(userRepo, subscriptionRepo, authService, verificationService, emailService, analyticsService)
	resetService := services.NewPasswordResetService(userRepo, resetRepo, emailService, authService)
	projectService := services.NewProjectService(projectRepo, deploymentRepo)
	generationService := services.NewGenerationService(userRepo, generationRepo, projectRepo, chain, store, analyticsService)

	// === Gin ===
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	limiter.StartSweeper(time.Minute, 10*time.Minute, ctx.Done())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS())

	router.GET("/healthz", handlers.Health(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, routes.Handlers{
		Auth:       handlers.NewAuthHandler(userService),
		Verify:     handlers.NewVerifyHandler(verificationService, resetService),
		User:       handlers.NewUserHandler(userService),
		Generation: handlers.NewGenerationHandler(generationService),
		Project:    handlers.NewProjectHandler(projectService),
	}, signer, limiter)

	// === Run ===
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("[app] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[app] server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("[app] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[app] shutdown: %v", err)
	}
}

func setupLogging(cfg config.LogConfig) {
	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	lvl, err := log.ParseLevel(cfg.Level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	if lvl != log.DebugLevel && lvl != log.TraceLevel {
		gin.SetMode(gin.ReleaseMode)
	}
}
