// Package router wires gin middleware and handler route registration.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/melihub/backend/internal/infrastructure/auth"
	"github.com/melihub/backend/internal/infrastructure/config"
	"github.com/melihub/backend/internal/infrastructure/logger"
	"github.com/melihub/backend/internal/infrastructure/telemetry"
	"github.com/melihub/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Config holds the router's middleware dependencies
type Config struct {
	Logger     *zap.Logger
	JWTService *auth.JWTService
	HTTP       config.HTTPConfig
	// Meter enables HTTP metrics when set
	Meter *telemetry.MeterProvider
	// TracingEnabled turns on the otelgin middleware
	TracingEnabled bool
	ServiceName    string
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// New creates a gin engine with the full middleware chain applied and
// returns a Router registering routes under /api/v1.
func New(cfg Config) *Router {
	engine := gin.New()

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(cfg.Logger))
	engine.Use(logger.Recovery(cfg.Logger))
	if cfg.TracingEnabled {
		engine.Use(otelgin.Middleware(cfg.ServiceName))
	}
	if cfg.Meter != nil {
		engine.Use(middleware.HTTPMetrics(cfg.Meter))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}

	jwtConfig := middleware.DefaultJWTConfig(cfg.JWTService)
	jwtConfig.Logger = cfg.Logger
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	return &Router{
		engine:     engine,
		apiVersion: "v1",
	}
}

// Engine returns the underlying gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Register adds a RouteRegistrar to be registered on Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}
