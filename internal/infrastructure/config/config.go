// Package config provides centralized configuration management
// using Viper for configuration loading and validation
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Discovery  DiscoveryConfig  `mapstructure:"discovery"`
	Images     ImagesConfig     `mapstructure:"images"`
	Catalogue  CatalogueConfig  `mapstructure:"catalogue"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Server     ServerConfig     `mapstructure:"server"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// DiscoveryConfig tunes the filter/pagination read model
type DiscoveryConfig struct {
	PageSize          int           `mapstructure:"page_size"`
	SearchDebounce    time.Duration `mapstructure:"search_debounce"`
	SettleDelay       time.Duration `mapstructure:"settle_delay"`
	PipelineCacheSize int           `mapstructure:"pipeline_cache_size"`
	ProfilePath       string        `mapstructure:"profile_path"`
}

// ImagesConfig tunes the image resolver
type ImagesConfig struct {
	BatchSize         int               `mapstructure:"batch_size"`
	MaxAttempts       int               `mapstructure:"max_attempts"`
	RetryInterval     time.Duration     `mapstructure:"retry_interval"`
	ProbeTimeout      time.Duration     `mapstructure:"probe_timeout"`
	RequestsPerSecond float64           `mapstructure:"requests_per_second"`
	Burst             int               `mapstructure:"burst"`
	BreakerFailures   uint32            `mapstructure:"breaker_failures"`
	BreakerTimeout    time.Duration     `mapstructure:"breaker_timeout"`
	GeneratorBaseURL  string            `mapstructure:"generator_base_url"`
	Fallbacks         map[string]string `mapstructure:"fallbacks"`
	DefaultFallback   string            `mapstructure:"default_fallback"`
	ClaimStore        string            `mapstructure:"claim_store"`
	ClaimKeyPrefix    string            `mapstructure:"claim_key_prefix"`
}

// CatalogueConfig locates the static recipe catalogue
type CatalogueConfig struct {
	// Path to a YAML or JSON catalogue. Empty selects the embedded sample.
	Path  string        `mapstructure:"path"`
	Watch bool          `mapstructure:"watch"`
	Delay time.Duration `mapstructure:"reload_delay"`
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	Database     int           `mapstructure:"database"`
	MaxRetries   int           `mapstructure:"max_retries"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolSize     int           `mapstructure:"pool_size"`
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MonitoringConfig contains monitoring configuration
type MonitoringConfig struct {
	EnableMetrics   bool          `mapstructure:"enable_metrics"`
	MetricsPath     string        `mapstructure:"metrics_path"`
	HealthCheckPath string        `mapstructure:"health_check_path"`
	Tracing         TracingConfig `mapstructure:"tracing"`
}

// TracingConfig contains OpenTelemetry tracing configuration
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	Insecure     bool    `mapstructure:"insecure"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("discovery")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/alchemorsel")
	}

	v.SetEnvPrefix("DISCOVERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, defaults cover everything
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration produced by defaults alone
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	// Defaults are static and always decode
	_ = v.Unmarshal(&config)
	return &config
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Alchemorsel Discovery")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	v.SetDefault("discovery.page_size", 8)
	v.SetDefault("discovery.search_debounce", "300ms")
	v.SetDefault("discovery.settle_delay", "400ms")
	v.SetDefault("discovery.pipeline_cache_size", 32)

	v.SetDefault("images.batch_size", 5)
	v.SetDefault("images.max_attempts", 3)
	v.SetDefault("images.retry_interval", "200ms")
	v.SetDefault("images.probe_timeout", "5s")
	v.SetDefault("images.requests_per_second", 20)
	v.SetDefault("images.burst", 5)
	v.SetDefault("images.breaker_failures", 10)
	v.SetDefault("images.breaker_timeout", "30s")
	v.SetDefault("images.generator_base_url", "https://source.unsplash.com/800x600/")
	v.SetDefault("images.default_fallback", "https://images.unsplash.com/photo-1546069901-ba9599a7e63c?w=800")
	v.SetDefault("images.fallbacks", map[string]string{
		"plat principal": "https://images.unsplash.com/photo-1547592180-85f173990554?w=800",
		"dessert":        "https://images.unsplash.com/photo-1488477181946-6428a0291777?w=800",
		"petit-dejeuner": "https://images.unsplash.com/photo-1533089860892-a7c6f0a88666?w=800",
		"salade":         "https://images.unsplash.com/photo-1540420773420-3366772f4999?w=800",
		"soupe":          "https://images.unsplash.com/photo-1547592166-23ac45744acd?w=800",
	})
	v.SetDefault("images.claim_store", "memory")
	v.SetDefault("images.claim_key_prefix", "discovery:images")

	v.SetDefault("catalogue.watch", false)
	v.SetDefault("catalogue.reload_delay", "250ms")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")

	v.SetDefault("monitoring.enable_metrics", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")
	v.SetDefault("monitoring.health_check_path", "/health")
	v.SetDefault("monitoring.tracing.enabled", false)
	v.SetDefault("monitoring.tracing.insecure", true)
	v.SetDefault("monitoring.tracing.sampling_rate", 0.1)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	if c.Discovery.PageSize < 1 {
		return fmt.Errorf("discovery.page_size must be positive")
	}

	if c.Discovery.SearchDebounce < 0 || c.Discovery.SettleDelay < 0 {
		return fmt.Errorf("discovery delays cannot be negative")
	}

	if c.Images.BatchSize < 1 {
		return fmt.Errorf("images.batch_size must be positive")
	}

	if c.Images.MaxAttempts < 0 {
		return fmt.Errorf("images.max_attempts cannot be negative")
	}

	if c.Images.DefaultFallback == "" {
		return fmt.Errorf("images.default_fallback is required")
	}

	switch c.Images.ClaimStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("images.claim_store must be memory or redis, got %q", c.Images.ClaimStore)
	}

	if rate := c.Monitoring.Tracing.SamplingRate; rate < 0 || rate > 1 {
		return fmt.Errorf("monitoring.tracing.sampling_rate must be between 0 and 1")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
