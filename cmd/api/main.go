package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/taskify_api/internal/alert"
	"github.com/GTDGit/taskify_api/internal/cache"
	"github.com/GTDGit/taskify_api/internal/config"
	"github.com/GTDGit/taskify_api/internal/database"
	"github.com/GTDGit/taskify_api/internal/handler"
	"github.com/GTDGit/taskify_api/internal/middleware"
	"github.com/GTDGit/taskify_api/internal/repository"
	"github.com/GTDGit/taskify_api/internal/service"
	"github.com/GTDGit/taskify_api/internal/sse"
	"github.com/GTDGit/taskify_api/internal/utils"
	"github.com/GTDGit/taskify_api/internal/worker"
)

// main is the application entrypoint for the Taskify inventory API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting taskify api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.Migrate(db.DB, "migrations"); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	productCache := cache.NewProductCache(redisClient, cfg.Redis.SnapshotTTL)
	draftStore := cache.NewDraftStore(redisClient, cfg.Redis.DraftTTL)

	// 4. Alert sessions publish to the SSE hub
	hub := sse.NewHub()
	registry := alert.NewRegistry(alert.Options{
		DefaultTTL:     cfg.Alerts.DefaultTTL,
		LowStockTTL:    cfg.Alerts.LowStockTTL,
		ReplenishedTTL: cfg.Alerts.ReplenishedTTL,
		Publisher:      sse.NewHubNotifier(hub),
	})
	defer registry.Close()

	// 5. Initialize repositories
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)

	// 6. Initialize services
	jwtManager := utils.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	adminAuthSvc := service.NewAdminAuthService(adminRepo, jwtManager)
	productSvc := service.NewProductService(productRepo, productCache, registry)
	customerSvc := service.NewCustomerService(customerRepo)
	saleSvc := service.NewSaleService(saleRepo, productRepo, customerRepo, productSvc)
	draftSvc, err := service.NewDraftService(draftStore, productRepo, saleSvc, cfg.Sales.DefaultTaxPercent)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid sales configuration")
	}
	alertSvc := service.NewAlertService(registry, productSvc)
	userSvc := service.NewUserService(adminRepo)

	bootstrapCtx, bootstrapCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := adminAuthSvc.EnsureAdmin(bootstrapCtx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name); err != nil {
		log.Error().Err(err).Msg("failed to bootstrap admin user")
	}
	bootstrapCancel()

	// 7. Initialize handlers
	rateLimiter := middleware.NewInvalidAuthRateLimiter(5, time.Minute)
	jwtMw := middleware.NewJWTMiddleware(jwtManager, rateLimiter)

	handlers := &handler.Handlers{
		Health: handler.NewHealthHandler(
			handler.PingFunc(func(ctx context.Context) error { return database.Ping(ctx, db) }),
			redisClient,
		),
		Auth:     handler.NewAuthHandler(adminAuthSvc, rateLimiter),
		Product:  handler.NewProductHandler(productSvc),
		Customer: handler.NewCustomerHandler(customerSvc),
		Sale:     handler.NewSaleHandler(saleSvc),
		Draft:    handler.NewDraftHandler(draftSvc),
		Alert:    handler.NewAlertHandler(alertSvc),
		SSE:      handler.NewSSEHandler(hub, alertSvc),
		User:     handler.NewUserHandler(userSvc),
	}

	// 8. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedHosts...))
	router.Use(middleware.LoggingMiddleware())
	handler.RegisterRoutes(router, handlers, jwtMw)

	// 9. Background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go rateLimiter.Run(ctx)
	go worker.NewStockSweepWorker(productSvc, registry, cfg.Worker.StockSweepInterval, cfg.Worker.SessionIdleAfter).Start(ctx)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
