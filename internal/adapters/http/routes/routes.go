package routes

import (
	"time"

	"replate-api/internal/adapters/http/handlers"
	"replate-api/internal/adapters/http/middleware"
	"replate-api/internal/adapters/persistence/repositories"
	"replate-api/internal/adapters/storage"
	"replate-api/internal/config"
	"replate-api/internal/core/services"
	"replate-api/internal/pkg/metrics"
	"replate-api/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Deps are the process-wide handles the routes are built from
type Deps struct {
	DB      *gorm.DB
	Config  *config.Config
	Mailer  services.Mailer
	Files   storage.FileStore
	Google  services.GoogleVerifier // nil disables Google sign-in
	Metrics *metrics.Metrics
	Limits  fiber.Storage // nil keeps rate-limit counters in memory
}

// Setup configures all routes for the application
func Setup(app *fiber.App, d Deps) {
	cfg := d.Config

	// Repositories
	userRepo := repositories.NewUserRepository(d.DB)
	storeRepo := repositories.NewStoreRepository(d.DB)
	productRepo := repositories.NewProductRepository(d.DB)

	// Services
	notifier := services.NewNotificationService(d.Mailer, cfg.FrontendURL, d.Metrics)
	authService := services.NewAuthService(userRepo, storeRepo, notifier, d.Google, cfg, d.Metrics)
	onboardingService := services.NewOnboardingService(userRepo, storeRepo, d.Files, authService, d.Metrics)
	adminService := services.NewAdminService(storeRepo, notifier, d.Files, d.Metrics)
	productService := services.NewProductService(storeRepo, productRepo)

	// Handlers
	validate := validation.New()
	healthHandler := handlers.NewHealthHandler(d.DB, cfg)
	authHandler := handlers.NewAuthHandler(authService, validate)
	storeHandler := handlers.NewStoreHandler(onboardingService, validate)
	adminHandler := handlers.NewAdminHandler(adminService, validate)
	productHandler := handlers.NewProductHandler(productService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)
	if d.Metrics != nil {
		app.Get("/metrics", d.Metrics.Handler())
	}

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Uploaded images on the local driver; S3 serves its own URLs
	if local, ok := d.Files.(*storage.Local); ok {
		app.Use(local.Prefix(), middleware.PublicCacheHeaders(7*24*time.Hour))
		app.Static(local.Prefix(), local.Dir(), fiber.Static{ByteRange: true})
	}

	api := app.Group("/api")
	api.Get("/", healthHandler.APIInfo)

	setupAuthRoutes(api.Group("/auth"), authHandler, storeHandler, d)
	setupMerchantRoutes(api.Group("/merchant"), storeHandler, productHandler, cfg)
	setupAdminRoutes(api.Group("/admin"), adminHandler, cfg)
}

// setupAuthRoutes configures registration, onboarding and account routes
func setupAuthRoutes(router fiber.Router, h *handlers.AuthHandler, store *handlers.StoreHandler, d Deps) {
	router.Use(middleware.NoCacheHeaders())

	authLimit := middleware.AuthRateLimiter(d.Limits)
	strictLimit := middleware.StrictRateLimiter(d.Limits)
	session := middleware.AuthMiddleware(d.Config)

	// Public
	router.Post("/register/user", authLimit, h.RegisterUser)
	router.Post("/register/store/merchant", authLimit, h.RegisterMerchant)
	router.Post("/login", authLimit, h.Login)
	router.Post("/google", authLimit, h.GoogleSignIn)
	router.Post("/verify-email", authLimit, h.VerifyEmail)
	router.Post("/resend-verification", strictLimit, h.ResendVerification)
	router.Post("/forgot-password", strictLimit, h.ForgotPassword)
	router.Post("/reset-password", authLimit, h.ResetPassword)

	// Session
	router.Get("/profile", session, h.Profile)
	router.Post("/register/store/info", session, store.SubmitStoreInfo)
	router.Post("/register/store/verification", session, store.SubmitVerification)
}

// setupMerchantRoutes configures the merchant dashboard routes
func setupMerchantRoutes(router fiber.Router, store *handlers.StoreHandler, products *handlers.ProductHandler, cfg *config.Config) {
	router.Use(middleware.AuthMiddleware(cfg))
	router.Use(middleware.MerchantOnly())

	router.Get("/store", middleware.PrivateCacheHeaders(30*time.Second), store.GetStore)
	router.Get("/store/stats", middleware.PrivateCacheHeaders(30*time.Second), store.GetStoreStats)

	productRoutes := router.Group("/products")
	productRoutes.Get("/", products.List)
	productRoutes.Post("/", products.Create)
	productRoutes.Post("/import", products.Import)
	productRoutes.Get("/import/template", products.ImportTemplate)
	productRoutes.Get("/:id", products.Get)
	productRoutes.Patch("/:id", products.Update)
	productRoutes.Delete("/:id", products.Delete)
	productRoutes.Patch("/:id/toggle", products.Toggle)
}

// setupAdminRoutes configures the store review routes
func setupAdminRoutes(router fiber.Router, h *handlers.AdminHandler, cfg *config.Config) {
	router.Use(middleware.AuthMiddleware(cfg))
	router.Use(middleware.AdminOnly())
	router.Use(middleware.NoCacheHeaders())

	router.Get("/stores/pending", h.ListPendingStores)
	router.Get("/stores", h.ListStores)
	router.Patch("/stores/:id/approve", h.ApproveStore)
	router.Patch("/stores/:id/reject", h.RejectStore)
	router.Get("/stats", h.Stats)
}
