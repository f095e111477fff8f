package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/marketplace/admin-console/docs"
	"github.com/marketplace/admin-console/internal/api/handler"
	"github.com/marketplace/admin-console/internal/api/middleware"
	"github.com/marketplace/admin-console/internal/core/domain"
	"github.com/marketplace/admin-console/internal/core/ports"
)

// Deps are the collaborators the console routes need.
type Deps struct {
	Sessions ports.SessionService
	Gate     ports.StoreGate
	Redis    *redis.Client
	// Mongo is nil when the session audit trail is disabled.
	Mongo *mongo.Database
	Log   zerolog.Logger

	// Registerer and Gatherer default to the Prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "console_http",
		Registerer: d.Registerer,
	}))

	// --- Session routes ---
	sessionHandler := handler.NewSessionHandler(d.Sessions, d.Gate)
	e.GET(middleware.LoginPath, sessionHandler.LoginPage, middleware.GuestOnly(d.Sessions))
	e.POST(middleware.LoginPath, sessionHandler.Login, middleware.GuestOnly(d.Sessions))
	e.POST("/logout", sessionHandler.Logout)
	e.GET("/session", sessionHandler.Session)
	e.POST("/session/refresh", sessionHandler.Refresh)
	e.GET(middleware.UnauthorizedPath, sessionHandler.Unauthorized)
	e.POST("/store/refresh", sessionHandler.RefreshStore, middleware.RequireAuthenticated(d.Sessions))

	// --- Console screens, one per capability ---
	for _, capability := range domain.AllCapabilities() {
		mws := []echo.MiddlewareFunc{middleware.RequireCapability(d.Sessions, capability)}
		if capability.StoreScoped() {
			mws = append(mws, middleware.RequireActiveStore(d.Sessions, d.Gate))
		}
		e.GET("/"+string(capability), handler.Screen(capability), mws...)
	}

	// --- Health probes, metrics and docs (no session required) ---
	healthHandler := handler.NewHealthHandler(d.Redis, d.Mongo)
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
