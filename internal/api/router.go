package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stackpeak/account-system/internal/api/handler"
	"github.com/stackpeak/account-system/internal/api/middleware"
	"github.com/stackpeak/account-system/internal/core/domain"
	"github.com/stackpeak/account-system/internal/core/service"
	"github.com/stackpeak/account-system/internal/infrastructure/config"
	mongostore "github.com/stackpeak/account-system/internal/infrastructure/db/mongo"
	redisstore "github.com/stackpeak/account-system/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all dependencies
// constructed once and passed explicitly — no shared service singletons.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("accounts"))

	// --- Dependencies ---
	userRepo := mongostore.NewUserRepository(db)
	tenantRepo := mongostore.NewTenantRepository(db)
	hasher := service.NewBcryptHasher()
	tokens := service.NewJWTTokenService(cfg.JWTSecret, cfg.TokenTTL)
	limiter := redisstore.NewLoginLimiter(rdb, cfg.Login.MaxAttempts, cfg.Login.AttemptWindow)

	authService := service.NewAuthService(userRepo, tokens, hasher, limiter, log)
	userService := service.NewUserService(userRepo, tenantRepo, hasher, log)
	tenantService := service.NewTenantService(tenantRepo, userService, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, tenantService)
	tenantHandler := handler.NewTenantHandler(tenantService)

	authenticated := middleware.Auth(tokens)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)

	// --- Tenant routes (admin tooling, unauthenticated provisioning) ---
	e.POST("/tenants", tenantHandler.Create)
	e.GET("/tenants", tenantHandler.List)

	// --- User routes (authenticated, permission-gated) ---
	users := e.Group("/users", authenticated)
	users.POST("", userHandler.Create, middleware.RequirePermission(authService, domain.PermUserCreate))
	users.GET("", userHandler.List, middleware.RequirePermission(authService, domain.PermUserGet))
	users.GET("/:id", userHandler.Get, middleware.RequirePermission(authService, domain.PermUserGet))
	users.PATCH("/:id", userHandler.Update, middleware.RequirePermission(authService, domain.PermUserUpdate))
	users.POST("/:id/terminate", userHandler.Terminate, middleware.RequirePermission(authService, domain.PermUserTerminate))

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
