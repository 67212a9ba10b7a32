package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Default values that must be overridden outside development.
const (
	DefaultJWTSecret     = "change-me-in-production"
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminPassword = "admin123"
	DefaultWhatsAppPhone = "918380050609"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	HTTP      HTTPConfig
	Database  DatabaseConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	Catalog   CatalogConfig
	Cart      CartConfig
	Checkout  CheckoutConfig
	Storage   StorageConfig
	Admin     AdminConfig
	Swagger   SwaggerConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64 // JSON requests
	MaxUploadSize    int64 // admin product forms
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
	// LoginRateLimit caps login attempts per client IP within LoginRateWindow
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	AutoMigrate     bool
}

// MongoConfig holds settings for the document-store product backend
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the host:port address of the Redis server
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                string
	AccessTokenExpiration time.Duration
	Issuer                string
}

// CatalogConfig controls how the public catalog is read
type CatalogConfig struct {
	Store         string // postgres, mongo
	DefaultOrder  string // latest, shuffle
	ShuffleMode   string // fisher_yates, comparator
	SSEHeartbeat  time.Duration
	SSEMaxClients int
}

// CartConfig controls where carts are persisted
type CartConfig struct {
	Storage   string // file, redis, memory
	Directory string // used by the file storage
	TTL       time.Duration
}

// CheckoutConfig holds the messaging deep-link target
type CheckoutConfig struct {
	BaseURL string
	Phone   string
}

// StorageConfig holds image host configuration
type StorageConfig struct {
	Provider      string // cloudinary, s3, stub
	Folder        string
	MaxFileSize   int64
	UploadTimeout time.Duration

	// Cloudinary unsigned uploads; CloudinaryAPIBase is the upload API prefix
	CloudinaryAPIBase   string
	CloudinaryCloudName string
	CloudinaryPreset    string

	// S3-compatible bucket
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	UsePathStyle  bool
	PublicBaseURL string
}

// AdminConfig holds the bootstrap admin account
type AdminConfig struct {
	Email    string
	Password string
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool
	AllowedIPs  []string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool
	DBTraceEnabled    bool
	DBSlowQueryThresh time.Duration

	// Pyroscope continuous profiling, independent of Enabled
	ProfilingEnabled       bool
	ProfilingServerAddr    string // e.g. "http://pyroscope:4040"
	ProfilingBasicAuthUser string
	ProfilingBasicAuthPass string
	ProfilingTypes         []string // cpu, alloc_space, inuse_space, goroutines, mutex_count, ...
	ProfilingSpanProfiles  bool     // label CPU samples with span ids; needs tracing
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with STORE_ prefix (e.g., STORE_DATABASE_PASSWORD)
// 2. .env file in the working directory
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/storefront")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("STORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			MaxUploadSize:    v.GetInt64("http.max_upload_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
			LoginRateLimit:   v.GetInt("http.login_rate_limit"),
			LoginRateWindow:  v.GetDuration("http.login_rate_window"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Mongo: MongoConfig{
			URI:        v.GetString("mongo.uri"),
			Database:   v.GetString("mongo.database"),
			Collection: v.GetString("mongo.collection"),
			Timeout:    v.GetDuration("mongo.timeout"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
			Issuer:                v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Catalog: CatalogConfig{
			Store:         v.GetString("catalog.store"),
			DefaultOrder:  v.GetString("catalog.default_order"),
			ShuffleMode:   v.GetString("catalog.shuffle_mode"),
			SSEHeartbeat:  v.GetDuration("catalog.sse_heartbeat"),
			SSEMaxClients: v.GetInt("catalog.sse_max_clients"),
		},
		Cart: CartConfig{
			Storage:   v.GetString("cart.storage"),
			Directory: v.GetString("cart.directory"),
			TTL:       v.GetDuration("cart.ttl"),
		},
		Checkout: CheckoutConfig{
			BaseURL: v.GetString("checkout.base_url"),
			Phone:   v.GetString("checkout.phone"),
		},
		Storage: StorageConfig{
			Provider:            v.GetString("storage.provider"),
			Folder:              v.GetString("storage.folder"),
			MaxFileSize:         v.GetInt64("storage.max_file_size"),
			UploadTimeout:       v.GetDuration("storage.upload_timeout"),
			CloudinaryAPIBase:   v.GetString("storage.cloudinary_api_base"),
			CloudinaryCloudName: v.GetString("storage.cloudinary_cloud_name"),
			CloudinaryPreset:    v.GetString("storage.cloudinary_preset"),
			Bucket:              v.GetString("storage.bucket"),
			Region:              v.GetString("storage.region"),
			Endpoint:            v.GetString("storage.endpoint"),
			AccessKey:           v.GetString("storage.access_key"),
			SecretKey:           v.GetString("storage.secret_key"),
			UseSSL:              v.GetBool("storage.use_ssl"),
			UsePathStyle:        v.GetBool("storage.use_path_style"),
			PublicBaseURL:       v.GetString("storage.public_base_url"),
		},
		Admin: AdminConfig{
			Email:    v.GetString("admin.email"),
			Password: v.GetString("admin.password"),
		},
		Swagger: SwaggerConfig{
			Enabled:     v.GetBool("swagger.enabled"),
			RequireAuth: v.GetBool("swagger.require_auth"),
			AllowedIPs:  v.GetStringSlice("swagger.allowed_ips"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),

			ProfilingEnabled:       v.GetBool("telemetry.profiling_enabled"),
			ProfilingServerAddr:    v.GetString("telemetry.profiling_server_address"),
			ProfilingBasicAuthUser: v.GetString("telemetry.profiling_basic_auth_user"),
			ProfilingBasicAuthPass: v.GetString("telemetry.profiling_basic_auth_password"),
			ProfilingTypes:         v.GetStringSlice("telemetry.profiling_types"),
			ProfilingSpanProfiles:  v.GetBool("telemetry.profiling_span_profiles"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storefront"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// uploads stream several images through the server
		cfg.HTTP.WriteTimeout = 2 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxUploadSize == 0 {
		cfg.HTTP.MaxUploadSize = 64 << 20 // 64MB
	}
	if cfg.HTTP.LoginRateLimit == 0 {
		cfg.HTTP.LoginRateLimit = 10
	}
	if cfg.HTTP.LoginRateWindow == 0 {
		cfg.HTTP.LoginRateWindow = time.Minute
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Cart-Session", "X-Upload-ID"}
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "storefront"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = "mongodb://localhost:27017"
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "storefront"
	}
	if cfg.Mongo.Collection == "" {
		cfg.Mongo.Collection = "products"
	}
	if cfg.Mongo.Timeout == 0 {
		cfg.Mongo.Timeout = 10 * time.Second
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = DefaultJWTSecret
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 12 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "storefront"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Catalog.Store == "" {
		cfg.Catalog.Store = "postgres"
	}
	if cfg.Catalog.DefaultOrder == "" {
		cfg.Catalog.DefaultOrder = "latest"
	}
	if cfg.Catalog.ShuffleMode == "" {
		cfg.Catalog.ShuffleMode = "fisher_yates"
	}
	if cfg.Catalog.SSEHeartbeat == 0 {
		cfg.Catalog.SSEHeartbeat = 30 * time.Second
	}
	if cfg.Catalog.SSEMaxClients == 0 {
		cfg.Catalog.SSEMaxClients = 1000
	}
	if cfg.Cart.Storage == "" {
		cfg.Cart.Storage = "file"
	}
	if cfg.Cart.Directory == "" {
		cfg.Cart.Directory = "data/carts"
	}
	if cfg.Cart.TTL == 0 {
		cfg.Cart.TTL = 30 * 24 * time.Hour
	}
	if cfg.Checkout.BaseURL == "" {
		cfg.Checkout.BaseURL = "https://wa.me"
	}
	if cfg.Checkout.Phone == "" {
		cfg.Checkout.Phone = DefaultWhatsAppPhone
	}
	if cfg.Storage.Provider == "" {
		cfg.Storage.Provider = "stub"
	}
	if cfg.Storage.Folder == "" {
		cfg.Storage.Folder = "sari-store"
	}
	if cfg.Storage.MaxFileSize == 0 {
		cfg.Storage.MaxFileSize = 10 << 20 // 10MB
	}
	if cfg.Storage.UploadTimeout == 0 {
		cfg.Storage.UploadTimeout = 90 * time.Second
	}
	if cfg.Storage.CloudinaryAPIBase == "" {
		cfg.Storage.CloudinaryAPIBase = "https://api.cloudinary.com"
	}
	if cfg.Storage.CloudinaryPreset == "" {
		cfg.Storage.CloudinaryPreset = "unsigned_sari"
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Admin.Email == "" {
		cfg.Admin.Email = DefaultAdminEmail
	}
	if cfg.Admin.Password == "" {
		cfg.Admin.Password = DefaultAdminPassword
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "storefront"
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
	if len(cfg.Telemetry.ProfilingTypes) == 0 {
		cfg.Telemetry.ProfilingTypes = []string{"cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space"}
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.Catalog.Store {
	case "postgres", "mongo":
	default:
		return fmt.Errorf("catalog.store must be one of postgres, mongo; got %q", c.Catalog.Store)
	}
	switch c.Catalog.DefaultOrder {
	case "latest", "shuffle":
	default:
		return fmt.Errorf("catalog.default_order must be one of latest, shuffle; got %q", c.Catalog.DefaultOrder)
	}
	switch c.Catalog.ShuffleMode {
	case "fisher_yates", "comparator":
	default:
		return fmt.Errorf("catalog.shuffle_mode must be one of fisher_yates, comparator; got %q", c.Catalog.ShuffleMode)
	}
	switch c.Cart.Storage {
	case "file", "memory":
	case "redis":
		if !c.Redis.Enabled {
			return fmt.Errorf("cart.storage=redis requires redis.enabled=true")
		}
	default:
		return fmt.Errorf("cart.storage must be one of file, redis, memory; got %q", c.Cart.Storage)
	}

	switch c.Storage.Provider {
	case "stub":
	case "cloudinary":
		if c.Storage.CloudinaryCloudName == "" {
			return fmt.Errorf("storage.cloudinary_cloud_name is required for the cloudinary provider")
		}
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for the s3 provider")
		}
		if c.Storage.PublicBaseURL == "" {
			return fmt.Errorf("storage.public_base_url is required for the s3 provider")
		}
	default:
		return fmt.Errorf("storage.provider must be one of cloudinary, s3, stub; got %q", c.Storage.Provider)
	}
	if c.Storage.MaxFileSize <= 0 {
		return fmt.Errorf("storage.max_file_size must be positive")
	}
	if _, err := url.Parse(c.Checkout.BaseURL); err != nil {
		return fmt.Errorf("checkout.base_url is not a valid URL: %w", err)
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == DefaultJWTSecret {
			return fmt.Errorf("jwt.secret must be changed in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Admin.Password == DefaultAdminPassword {
			return fmt.Errorf("admin.password must be changed in production")
		}
		if c.Catalog.Store == "postgres" && c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Telemetry.ProfilingEnabled && c.Telemetry.ProfilingServerAddr == "" {
		return fmt.Errorf("telemetry.profiling_server_address is required when profiling is enabled")
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
