package api

import (
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/courtside/accounts-api/internal/api/handler"
	"github.com/courtside/accounts-api/internal/api/middleware"
	"github.com/courtside/accounts-api/internal/core/domain"
	"github.com/courtside/accounts-api/internal/core/ports"
	"github.com/courtside/accounts-api/internal/core/token"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// Dependencies are constructed by the caller and injected.
func NewRouter(
	users ports.UserService,
	codec *token.Codec,
	tokenTTL time.Duration,
	pg handler.Pinger,
	rdb *redis.Client,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(users, tokenTTL)
	userHandler := handler.NewUserHandler(users)
	authn := middleware.Auth(codec)

	// --- API routes ---
	v1 := e.Group("/api/v1")
	v1.POST("/auth/signup", authHandler.Signup)
	v1.POST("/auth/login", authHandler.Login)

	authed := v1.Group("/users", authn)
	authed.GET("/me", userHandler.Me)
	authed.PATCH("/me", userHandler.UpdateMe)
	authed.PUT("/password", userHandler.UpdatePassword)
	authed.DELETE("/:username", userHandler.Delete, middleware.RBAC(domain.RoleAdmin))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(pg, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
