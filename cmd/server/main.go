package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/sari-store/storefront/docs"
	"github.com/sari-store/storefront/internal/application/admin"
	cartapp "github.com/sari-store/storefront/internal/application/cart"
	catalogapp "github.com/sari-store/storefront/internal/application/catalog"
	checkoutapp "github.com/sari-store/storefront/internal/application/checkout"
	identityapp "github.com/sari-store/storefront/internal/application/identity"
	"github.com/sari-store/storefront/internal/domain/catalog"
	"github.com/sari-store/storefront/internal/infrastructure/auth"
	"github.com/sari-store/storefront/internal/infrastructure/cache"
	"github.com/sari-store/storefront/internal/infrastructure/cartstore"
	"github.com/sari-store/storefront/internal/infrastructure/config"
	"github.com/sari-store/storefront/internal/infrastructure/docstore"
	"github.com/sari-store/storefront/internal/infrastructure/event"
	"github.com/sari-store/storefront/internal/infrastructure/logger"
	"github.com/sari-store/storefront/internal/infrastructure/persistence"
	"github.com/sari-store/storefront/internal/infrastructure/storage"
	"github.com/sari-store/storefront/internal/infrastructure/telemetry"
	"github.com/sari-store/storefront/internal/interfaces/http/handler"
	"github.com/sari-store/storefront/internal/interfaces/http/middleware"
	"github.com/sari-store/storefront/internal/interfaces/http/router"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

const (
	serviceVersion = "1.0.0"
	// uploadProgressTTL keeps finished uploads pollable for a while
	uploadProgressTTL = 10 * time.Minute
	shutdownTimeout   = 30 * time.Second
)

//	@title			Sari Storefront API
//	@version		1.0
//	@description	Catalog, cart, WhatsApp checkout and admin upload API of the sari storefront

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Admin token. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry first so the final logger can carry the OTel log bridge
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to set up telemetry", zap.Error(err))
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			bootLog.Error("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	log := bootLog
	if providers.LoggerProvider != nil {
		core := telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, providers.LoggerProvider, logger.ParseLevel(cfg.Log.Level))
		if log, err = logger.New(logCfg, core); err != nil {
			bootLog.Fatal("Failed to initialize logger", zap.Error(err))
		}
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfigFrom(cfg.Telemetry), log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Profiler shutdown failed", zap.Error(err))
		}
	}()
	if cfg.Telemetry.ProfilingSpanProfiles && profiler.IsEnabled() && !providers.EnableSpanProfiles() {
		log.Warn("Span profiles need telemetry.enabled; CPU samples carry no span ids")
	}

	log.Info("Starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("catalog_store", cfg.Catalog.Store),
		zap.String("cart_storage", cfg.Cart.Storage),
		zap.String("image_host", cfg.Storage.Provider),
	)

	checks := map[string]handler.Pinger{}

	// Admin accounts always live in Postgres; the catalog may live in Mongo
	db, err := persistence.NewDatabase(&cfg.Database, logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh)))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	if cfg.Database.AutoMigrate {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	checks["database"] = db
	log.Info("Database connected")

	var (
		products catalog.ProductRepository = persistence.NewGormProductRepository(db.DB)
		feed     catalog.ChangeFeed
	)
	if cfg.Catalog.Store == "mongo" {
		client, err := docstore.Connect(ctx, cfg.Mongo)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error("Error disconnecting MongoDB", zap.Error(err))
			}
		}()
		store := docstore.NewProductStore(client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection), log)
		products, feed = store, store
		checks["mongo"] = handler.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		})
		log.Info("Catalog stored in MongoDB", zap.String("collection", cfg.Mongo.Collection))
	}

	// A redis-backed cart cannot degrade to memory without losing carts
	caches, err := cache.NewFactory(ctx, cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.Cart.Storage != "redis"),
	)
	if err != nil {
		log.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer func() {
		if err := caches.Close(); err != nil {
			log.Error("Error closing cache", zap.Error(err))
		}
	}()
	if client := caches.Client(); client != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}

	carts, err := cartstore.New(cfg.Cart, caches.Client())
	if err != nil {
		log.Fatal("Failed to initialize cart storage", zap.Error(err))
	}

	imageHost, err := storage.New(cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize image host", zap.Error(err))
	}

	// Global meter is a no-op unless metrics are enabled
	meter := otel.GetMeterProvider().Meter(cfg.Telemetry.ServiceName)
	metrics, err := telemetry.NewStorefrontMetrics(telemetry.StorefrontMetricsConfig{
		Meter:    meter,
		Provider: cfg.Storage.Provider,
	})
	if err != nil {
		log.Fatal("Failed to create metrics", zap.Error(err))
	}

	bus := event.NewInMemoryEventBus(log)
	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	catalogOpts := []catalogapp.Option{catalogapp.WithLogger(log)}
	if feed != nil {
		catalogOpts = append(catalogOpts, catalogapp.WithChangeFeed(feed))
	}
	catalogService := catalogapp.NewService(products, catalog.NewShuffler(catalog.ShuffleMode(cfg.Catalog.ShuffleMode)), bus, catalogOpts...)
	defer catalogService.Close()
	go catalogService.RunChangeFeed(ctx)

	cartService := cartapp.NewService(carts, catalogService, metrics, log)
	checkoutService := checkoutapp.NewService(catalogService, cartService, cfg.Checkout, metrics, log)
	uploadService := admin.NewUploadService(products, imageHost, bus, admin.UploadConfig{
		MaxFileSize: cfg.Storage.MaxFileSize,
		Timeout:     cfg.Storage.UploadTimeout,
	}, metrics, log)

	authService := identityapp.NewAuthService(
		persistence.NewGormAdminRepository(db.DB),
		auth.NewJWTService(cfg.JWT),
		caches.TokenBlacklist(),
		log,
	)
	if cfg.Admin.Email != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			log.Fatal("Failed to provision admin account", zap.Error(err))
		}
	}

	// HTTP layer
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	stream := handler.NewCatalogStreamHandler(catalogService,
		handler.WithSSELogger(log),
		handler.WithSSEHeartbeat(cfg.Catalog.SSEHeartbeat),
		handler.WithSSEMaxClients(cfg.Catalog.SSEMaxClients),
	)
	if err := stream.Start(); err != nil {
		log.Fatal("Failed to start catalog stream", zap.Error(err))
	}
	defer stream.Stop()

	loginLimiter := middleware.NewRateLimiter(cfg.HTTP.LoginRateLimit, cfg.HTTP.LoginRateWindow)
	defer loginLimiter.Stop()

	defaultOrder, err := catalog.ParseOrdering(cfg.Catalog.DefaultOrder, catalog.OrderLatest)
	if err != nil {
		log.Fatal("Invalid default catalog order", zap.Error(err))
	}

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.App.Env == "production"

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	httpMeter := meter
	if !cfg.Telemetry.Enabled || !cfg.Telemetry.MetricsEnabled {
		httpMeter = nil
	}

	engine := router.NewEngine(router.EngineConfig{
		Logger:         log,
		Meter:          httpMeter,
		Tracing:        middleware.TracingConfig{ServiceName: cfg.Telemetry.ServiceName, Enabled: cfg.Telemetry.Enabled},
		Profiling:      profiler.IsEnabled(),
		CORS:           cors,
		Security:       security,
		Swagger:        middleware.SwaggerConfig{Enabled: cfg.Swagger.Enabled, RequireAuth: cfg.Swagger.RequireAuth, AllowedIPs: cfg.Swagger.AllowedIPs},
		TrustedProxies: cfg.HTTP.TrustedProxies,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		MaxUploadSize:  cfg.HTTP.MaxUploadSize,
		LoginLimiter:   loginLimiter,
		Authenticator:  authService,
	}, router.Handlers{
		Catalog:  handler.NewCatalogHandler(catalogService, defaultOrder),
		Stream:   stream,
		Cart:     handler.NewCartHandler(cartService),
		Checkout: handler.NewCheckoutHandler(checkoutService),
		Auth:     handler.NewAuthHandler(authService),
		Admin:    handler.NewAdminProductHandler(uploadService, admin.NewProgressTracker(uploadProgressTTL), log),
		System:   handler.NewSystemHandler(cfg.App.Name, serviceVersion, checks, log),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	// Open event streams never finish on their own
	stream.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus did not drain", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
