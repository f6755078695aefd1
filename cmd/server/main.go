package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcrm "github.com/melihub/backend/internal/application/crm"
	appidentity "github.com/melihub/backend/internal/application/identity"
	"github.com/melihub/backend/internal/application/integration"
	"github.com/melihub/backend/internal/application/promotion"
	"github.com/melihub/backend/internal/domain/marketplace"
	"github.com/melihub/backend/internal/infrastructure/auth"
	"github.com/melihub/backend/internal/infrastructure/cache"
	"github.com/melihub/backend/internal/infrastructure/config"
	"github.com/melihub/backend/internal/infrastructure/logger"
	"github.com/melihub/backend/internal/infrastructure/mercadolibre"
	"github.com/melihub/backend/internal/infrastructure/persistence"
	"github.com/melihub/backend/internal/infrastructure/scheduler"
	"github.com/melihub/backend/internal/infrastructure/telemetry"
	"github.com/melihub/backend/internal/interfaces/http/handler"
	"github.com/melihub/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting melihub backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry (no-op providers when disabled)
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	if cfg.Telemetry.Enabled {
		otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: loggerProvider,
			Level:          zapcore.InfoLevel,
		})
		log = telemetry.NewBridgedLogger(log.Core(), otelCore)
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.EnableTracing(); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected")

	// Redis is optional; without it the PKCE verifier store falls back
	// to memory and the customer-aggregate cache is skipped.
	var verifierStore marketplace.VerifierStore
	var summaryCache appcrm.SummaryCache
	if cfg.Redis.Host != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, using in-memory verifier store", zap.Error(err))
			verifierStore = cache.NewInMemoryVerifierStore()
		} else {
			defer func() {
				_ = redisClient.Close()
			}()
			verifierStore = cache.NewRedisVerifierStore(redisClient, "")
			summaryCache = cache.NewRedisSummaryCache(redisClient, "")
			log.Info("Redis connected")
		}
	} else {
		verifierStore = cache.NewInMemoryVerifierStore()
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)

	// MercadoLibre client
	meliClient, err := mercadolibre.NewClient(&mercadolibre.Config{
		AppID:          cfg.MercadoLibre.AppID,
		SecretKey:      cfg.MercadoLibre.SecretKey,
		RedirectURI:    cfg.MercadoLibre.RedirectURI,
		APIBaseURL:     cfg.MercadoLibre.APIBaseURL,
		TimeoutSeconds: cfg.MercadoLibre.TimeoutSeconds,
	})
	if err != nil {
		log.Fatal("Failed to create MercadoLibre client", zap.Error(err))
	}

	// Business metrics, nil unless telemetry is on
	var integrationMetrics *telemetry.IntegrationMetrics
	if meterProvider.IsEnabled() {
		integrationMetrics, err = telemetry.NewIntegrationMetrics(telemetry.IntegrationMetricsConfig{
			Meter:  meterProvider.Meter("integration"),
			Logger: log,
		})
		if err != nil {
			log.Warn("Failed to create integration metrics", zap.Error(err))
		}
	}

	// Services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := appidentity.NewAuthService(userRepo, jwtService, log)
	linkService := integration.NewLinkService(userRepo, meliClient, verifierStore, log)
	tokenService := integration.NewTokenService(userRepo, meliClient, log).WithMetrics(integrationMetrics)
	syncService := appcrm.NewSyncService(userRepo, customerRepo, orderRepo, tokenService, meliClient, summaryCache, log).
		WithMetrics(integrationMetrics)
	customerQueryService := appcrm.NewCustomerQueryService(customerRepo, summaryCache, log)
	productQueryService := appcrm.NewProductQueryService(productRepo)
	messageService := appcrm.NewMessageService(userRepo, customerRepo, orderRepo, tokenService, meliClient, log).
		WithMetrics(integrationMetrics)
	eligibilityService := promotion.NewEligibilityService(meliClient, log)
	promotionService := promotion.NewPromotionService(
		userRepo, customerRepo, orderRepo, productRepo,
		tokenService, meliClient, eligibilityService,
		promotion.DefaultPromotionServiceConfig(), log,
	).WithMetrics(integrationMetrics)
	listingService := promotion.NewListingService(userRepo, tokenService, meliClient, log)
	priceService := promotion.NewPriceService(userRepo, productRepo, tokenService, meliClient, log)

	// Background order sync keeps dashboards warm between manual syncs
	var syncScheduler *scheduler.SyncScheduler
	if cfg.Scheduler.SyncEnabled {
		syncScheduler = scheduler.NewSyncScheduler(scheduler.SyncSchedulerConfig{
			Interval: cfg.Scheduler.SyncInterval,
		}, userRepo, syncService, log)
		syncScheduler.Start(ctx)
	}

	// Router and handlers
	r := router.New(router.Config{
		Logger:         log,
		JWTService:     jwtService,
		HTTP:           cfg.HTTP,
		Meter:          meterProvider,
		TracingEnabled: cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
	})
	r.Register(handler.NewSystemHandler(db)).
		Register(handler.NewAuthHandler(authService)).
		Register(handler.NewMeliHandler(linkService)).
		Register(handler.NewCustomerHandler(syncService, customerQueryService, messageService)).
		Register(handler.NewPromotionHandler(promotionService)).
		Register(handler.NewProductHandler(productQueryService, listingService, priceService))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        r.Engine(),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if syncScheduler != nil {
		if err := syncScheduler.Stop(shutdownCtx); err != nil {
			log.Error("Sync scheduler shutdown failed", zap.Error(err))
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Meter provider shutdown failed", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Logger provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
