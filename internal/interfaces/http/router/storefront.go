package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sari-store/storefront/internal/infrastructure/logger"
	"github.com/sari-store/storefront/internal/interfaces/http/handler"
	"github.com/sari-store/storefront/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig holds the cross-cutting settings of the HTTP engine
type EngineConfig struct {
	Logger         *zap.Logger
	Meter          metric.Meter // nil disables request metrics
	Tracing        middleware.TracingConfig
	Profiling      bool // label profile samples per route
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	Swagger        middleware.SwaggerConfig
	TrustedProxies []string

	// MaxBodySize bounds JSON requests; MaxUploadSize bounds admin forms
	MaxBodySize   int64
	MaxUploadSize int64

	// LoginLimiter throttles login attempts; nil leaves login unthrottled
	LoginLimiter  *middleware.RateLimiter
	Authenticator middleware.Authenticator
}

// Handlers are the route handlers mounted by NewEngine
type Handlers struct {
	Catalog  *handler.CatalogHandler
	Stream   *handler.CatalogStreamHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Auth     *handler.AuthHandler
	Admin    *handler.AdminProductHandler
	System   *handler.SystemHandler
}

// NewEngine builds the storefront engine. Middleware runs in this order:
// request id, panic recovery, access log, tracing, profiling labels,
// metrics, security headers, CORS. Body limits are applied per group.
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(cfg.Tracing))
	engine.Use(middleware.SpanEnricher())
	if cfg.Profiling {
		engine.Use(middleware.Profiling(true))
	}
	if cfg.Meter != nil {
		engine.Use(middleware.HTTPMetrics(cfg.Meter))
	}
	engine.Use(middleware.SecureWithConfig(cfg.Security))
	engine.Use(middleware.CORSWithConfig(cfg.CORS))

	adminAuth := middleware.AdminAuth(cfg.Authenticator, log)

	// Outside API versioning
	engine.GET("/health", h.System.Health)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, adminAuth),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(
		catalogRoutes(h, cfg.MaxBodySize),
		cartRoutes(h, cfg.MaxBodySize),
		checkoutRoutes(h, cfg.MaxBodySize),
		authRoutes(h, cfg.MaxBodySize, cfg.LoginLimiter),
		adminRoutes(h, cfg.MaxUploadSize, adminAuth),
		systemRoutes(h),
	)
	r.Setup()

	return engine
}

func catalogRoutes(h Handlers, maxBody int64) *DomainGroup {
	g := NewDomainGroup("catalog", "/catalog").Use(middleware.BodyLimit(maxBody))
	g.GET("/products", h.Catalog.ListProducts)
	g.GET("/products/:id", h.Catalog.GetProduct)
	g.GET("/categories", h.Catalog.ListCategories)
	if h.Stream != nil {
		g.GET("/stream", h.Stream.Stream)
	}
	return g
}

func cartRoutes(h Handlers, maxBody int64) *DomainGroup {
	g := NewDomainGroup("cart", "/cart").Use(middleware.BodyLimit(maxBody))
	g.GET("", h.Cart.GetCart)
	items := g.Group("items", "/items")
	items.POST("", h.Cart.AddItem)
	items.PUT("/:productId", h.Cart.UpdateQuantity)
	items.DELETE("/:productId", h.Cart.RemoveItem)
	return g
}

func checkoutRoutes(h Handlers, maxBody int64) *DomainGroup {
	g := NewDomainGroup("checkout", "/checkout").Use(middleware.BodyLimit(maxBody))
	g.GET("/products/:id/link", h.Checkout.ProductLink)
	g.GET("/cart/link", h.Checkout.CartLink)
	return g
}

func authRoutes(h Handlers, maxBody int64, limiter *middleware.RateLimiter) *DomainGroup {
	g := NewDomainGroup("auth", "/auth").Use(middleware.BodyLimit(maxBody))
	if limiter != nil {
		g.POST("/login", middleware.RateLimit(limiter), h.Auth.Login)
	} else {
		g.POST("/login", h.Auth.Login)
	}
	g.POST("/logout", h.Auth.Logout)
	return g
}

func adminRoutes(h Handlers, maxUpload int64, adminAuth gin.HandlerFunc) *DomainGroup {
	g := NewDomainGroup("admin", "/admin").Use(adminAuth, middleware.BodyLimit(maxUpload))
	g.POST("/products", h.Admin.CreateProduct)
	g.PUT("/products/:id", h.Admin.UpdateProduct)
	g.DELETE("/products/:id", h.Admin.DeleteProduct)
	g.GET("/uploads/:uploadId", h.Admin.GetUploadProgress)
	return g
}

func systemRoutes(h Handlers) *DomainGroup {
	g := NewDomainGroup("system", "/system")
	g.GET("/info", h.System.GetSystemInfo)
	g.GET("/health", h.System.Health)
	return g
}
