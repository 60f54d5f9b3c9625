// Package config provides configuration management for the keiba-ai service.
package config

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Netkeiba   NetkeibaConfig   `mapstructure:"netkeiba" validate:"required"`
	Scorer     ScorerConfig     `mapstructure:"scorer" validate:"required"`
	Simulation SimulationConfig `mapstructure:"simulation" validate:"required"`
	Value      ValueConfig      `mapstructure:"value" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Ingestion  IngestionConfig  `mapstructure:"ingestion" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// NetkeibaConfig represents the race data provider configuration
type NetkeibaConfig struct {
	BaseURL            string  `mapstructure:"base_url" validate:"required,url"`
	APIKey             string  `mapstructure:"api_key"`
	TimeoutSeconds     int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries         int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
}

// ScorerConfig represents the ranking-model service configuration
type ScorerConfig struct {
	BaseURL         string `mapstructure:"base_url" validate:"required,url"`
	ModelVersion    string `mapstructure:"model_version" validate:"required"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries      int    `mapstructure:"max_retries" validate:"gte=0"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheMaxSize    int    `mapstructure:"cache_max_size" validate:"required,gt=0"`
}

// SimulationConfig represents outcome simulation configuration
type SimulationConfig struct {
	Trials  int   `mapstructure:"trials" validate:"required,gt=0"`
	Seed    int64 `mapstructure:"seed"`
	Workers int   `mapstructure:"workers" validate:"gte=0"`
	TopK    int   `mapstructure:"top_k" validate:"gte=0"`
}

// ValueConfig represents expected-value analysis configuration
type ValueConfig struct {
	EVThreshold float64 `mapstructure:"ev_threshold" validate:"required,gt=0"`
}

// ServerConfig represents the API server configuration
type ServerConfig struct {
	Port       int `mapstructure:"port" validate:"required,min=1,max=65535"`
	HealthPort int `mapstructure:"health_port" validate:"required,min=1,max=65535"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IngestionConfig represents race-card ingestion configuration
type IngestionConfig struct {
	Schedule      string `mapstructure:"schedule" validate:"required"`
	LookaheadDays int    `mapstructure:"lookahead_days" validate:"required,gt=0"`
}
