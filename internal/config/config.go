package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"product-dashboard/internal/aggregate"
)

const DefaultSourceURL = "https://backendapimongo.tigasolutions.com.br/api/v1/todos"

type Config struct {
	Server   ServerConfig
	Source   SourceConfig
	Refresh  RefreshConfig
	Insights InsightsConfig
	Logger   LoggerConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// SourceConfig selects where products come from. Kind is "http" or "static";
// a static source with an empty StaticPath uses the bundled data set.
type SourceConfig struct {
	Kind       string
	URL        string
	StaticPath string
	Timeout    time.Duration
}

type RefreshConfig struct {
	Schedule      string
	RetryDelay    time.Duration
	EmptyDelay    time.Duration
	BackoffFactor float64
	MaxRetryDelay time.Duration
	MaxAttempts   int
}

type InsightsConfig struct {
	LowStockCritical int
	LowStockReorder  int
	ExcessStock      int
	RatingCutoff     float64
	ExpiryMonths     int
	FallbackOnEmpty  bool
}

type LoggerConfig struct {
	Level     string
	Format    string
	Service   string
	AddSource bool
}

type SecurityConfig struct {
	EnableRateLimit bool
	RateLimitRPS    int
	RateLimitBurst  int
	AllowedOrigins  []string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; real environment
// variables take precedence over it.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "localhost"),
			Port:            getEnvInt("SERVER_PORT", 8084),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Source: SourceConfig{
			Kind:       getEnvString("SOURCE_KIND", "http"),
			URL:        getEnvString("SOURCE_URL", DefaultSourceURL),
			StaticPath: getEnvString("SOURCE_STATIC_PATH", ""),
			Timeout:    getEnvDuration("SOURCE_TIMEOUT", 15*time.Second),
		},
		Refresh: RefreshConfig{
			Schedule:      getEnvString("REFRESH_SCHEDULE", "@every 5m"),
			RetryDelay:    getEnvDuration("REFRESH_RETRY_DELAY", 5*time.Second),
			EmptyDelay:    getEnvDuration("REFRESH_EMPTY_DELAY", 3*time.Second),
			BackoffFactor: getEnvFloat("REFRESH_BACKOFF_FACTOR", 2),
			MaxRetryDelay: getEnvDuration("REFRESH_MAX_RETRY_DELAY", 2*time.Minute),
			MaxAttempts:   getEnvInt("REFRESH_MAX_ATTEMPTS", 10),
		},
		Insights: InsightsConfig{
			LowStockCritical: getEnvInt("INSIGHTS_LOW_STOCK_CRITICAL", aggregate.LowStockCritical),
			LowStockReorder:  getEnvInt("INSIGHTS_LOW_STOCK_REORDER", aggregate.LowStockReorder),
			ExcessStock:      getEnvInt("INSIGHTS_EXCESS_STOCK", aggregate.DefaultExcessStock),
			RatingCutoff:     getEnvFloat("INSIGHTS_RATING_CUTOFF", aggregate.DefaultRatingCutoff),
			ExpiryMonths:     getEnvInt("INSIGHTS_EXPIRY_MONTHS", aggregate.DefaultExpiryHorizon),
			FallbackOnEmpty:  getEnvBool("INSIGHTS_FALLBACK_ON_EMPTY", false),
		},
		Logger: LoggerConfig{
			Level:     getEnvString("LOG_LEVEL", "info"),
			Format:    getEnvString("LOG_FORMAT", "json"),
			Service:   getEnvString("LOG_SERVICE", "product-dashboard"),
			AddSource: getEnvBool("LOG_ADD_SOURCE", false),
		},
		Security: SecurityConfig{
			EnableRateLimit: getEnvBool("SECURITY_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:    getEnvInt("SECURITY_RATE_LIMIT_RPS", 100),
			RateLimitBurst:  getEnvInt("SECURITY_RATE_LIMIT_BURST", 10),
			AllowedOrigins:  getEnvStringSlice("SECURITY_ALLOWED_ORIGINS", []string{"http://localhost:8084"}),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	switch c.Source.Kind {
	case "http":
		if c.Source.URL == "" {
			return fmt.Errorf("source URL cannot be empty for an http source")
		}
	case "static":
	default:
		return fmt.Errorf("invalid source kind %q, must be one of: http, static", c.Source.Kind)
	}

	if c.Refresh.RetryDelay <= 0 || c.Refresh.EmptyDelay <= 0 {
		return fmt.Errorf("retry delays must be positive")
	}

	if c.Refresh.BackoffFactor < 1 {
		return fmt.Errorf("backoff factor must be at least 1, got %v", c.Refresh.BackoffFactor)
	}

	if c.Refresh.MaxAttempts < 0 {
		return fmt.Errorf("max attempts cannot be negative")
	}

	if c.Insights.RatingCutoff < 0 || c.Insights.RatingCutoff > 5 {
		return fmt.Errorf("rating cutoff must be within [0, 5], got %v", c.Insights.RatingCutoff)
	}

	if c.Insights.ExpiryMonths <= 0 {
		return fmt.Errorf("expiry horizon must be positive")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	return nil
}

func (c InsightsConfig) Thresholds() aggregate.Thresholds {
	return aggregate.Thresholds{
		LowStockCritical: c.LowStockCritical,
		LowStockReorder:  c.LowStockReorder,
		ExcessStock:      c.ExcessStock,
		RatingCutoff:     c.RatingCutoff,
		ExpiryMonths:     c.ExpiryMonths,
		FallbackOnEmpty:  c.FallbackOnEmpty,
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
