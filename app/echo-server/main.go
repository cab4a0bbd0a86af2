package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"vitalink/app/echo-server/router"
	"vitalink/business/catalog"
	"vitalink/business/clients"
	"vitalink/business/practitioner"
	"vitalink/business/recommendation"
	"vitalink/business/wizard"
	rediscache "vitalink/internal/repository/redis"
	"vitalink/internal/repository/storefront"
	"vitalink/internal/rest"
	"vitalink/pkg/config"
	"vitalink/pkg/database"
	"vitalink/pkg/logger"
	"vitalink/pkg/metrics"
	"vitalink/pkg/utils"

	psqlRepo "vitalink/internal/repository/postgres"
	redisdb "vitalink/pkg/database/redis"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Vitalink", "version", cfg.App.Version)

	utils.InitJWT(cfg.JWT.SecretKey)
	metrics.Init()

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	// Init storefront product API client
	storefrontRepo := storefront.NewStorefrontRepository(storefront.StorefrontConfig{
		APIBaseURL: cfg.Storefront.APIBaseURL,
		APIKey:     cfg.Storefront.APIKey,
	})

	// The catalog cache is optional; without Redis the storefront is hit
	// directly.
	var catalogProvider rest.CatalogService = storefrontRepo
	if cfg.Redis.Enabled() {
		redisClient, err := redisdb.InitRedis(cfg)
		if err != nil {
			logger.Fatal("Failed to connect to redis", "error", err)
		}
		catalogProvider = rediscache.NewCatalogCache(redisClient, storefrontRepo, 0)
		logger.Info("Catalog cache enabled")
	}

	// Init validate
	validate := validator.New()

	// Init repo
	practitionerRepo := psqlRepo.NewPractitionerRepository(db)
	clientRepo := psqlRepo.NewClientRepository(db)
	recommendationRepo := psqlRepo.NewRecommendationRepository(db)

	// Init service
	practitionerService := practitioner.NewPractitionerService(practitionerRepo, validate)
	clientService := clients.NewClientService(clientRepo, validate)
	recommendationService := recommendation.NewService(recommendationRepo, practitionerRepo, cfg.App.ShareCodeKey)

	// Seed the bootstrap admin account; approval of new registrations needs one.
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := practitionerService.EnsureAdmin(seedCtx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		seedCancel()
		logger.Fatal("Failed to seed admin account", "error", err)
	}
	seedCancel()

	// Init wizard session manager
	var provider catalog.ProductProvider = catalogProvider
	wizardManager := wizard.NewManager(
		provider,
		clientService,
		recommendationService,
		cfg.Storefront.StoreURL,
	)

	// Init handler
	practitionerHandler := rest.NewPractitionerHandler(practitionerService)
	wizardHandler := rest.NewWizardHandler(wizardManager, recommendationService, clientService)
	clientHandler := rest.NewClientHandler(clientService)
	recommendationHandler := rest.NewRecommendationHandler(recommendationService, cfg.Storefront.StoreURL)
	catalogHandler := rest.NewCatalogHandler(catalogProvider)
	webhookHandler := rest.NewWebhookHandler(recommendationService, cfg.Storefront.WebhookVerificationToken)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupPractitionerRoutes(api, practitionerHandler)
	router.SetupWizardRoutes(api, wizardHandler)
	router.SetupClientRoutes(api, clientHandler)
	router.SetupRecommendationRoutes(api, recommendationHandler)
	router.SetupCatalogRoutes(api, catalogHandler)
	router.SetupWebhookRoutes(api, webhookHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	wizardManager.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
