package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Logging   LoggingConfig   `mapstructure:",squash"`
	Business  BusinessConfig  `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	StatsRefreshSpec string `mapstructure:"SCHEDULER_STATS_REFRESH_SPEC"`
	Timezone         string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Pretty bool   `mapstructure:"LOG_PRETTY"`
}

type BusinessConfig struct {
	// DebtAutoInitialize lets a first payment against a NO_DEBT unit with a
	// finance provider initialize the debt account from the derived principal.
	DebtAutoInitialize   bool          `mapstructure:"DEBT_AUTO_INITIALIZE"`
	PayoffTolerance      string        `mapstructure:"PAYOFF_TOLERANCE"`
	DefaultPrincipalBase string        `mapstructure:"DEFAULT_PRINCIPAL_BASE"`
	SummaryCacheTTL      time.Duration `mapstructure:"SUMMARY_CACHE_TTL"`
	StatsCacheTTL        time.Duration `mapstructure:"STATS_CACHE_TTL"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", "15s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	// Empty default so AutomaticEnv can see the key during Unmarshal.
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_PRETTY", false)
	viper.SetDefault("DEBT_AUTO_INITIALIZE", true)
	viper.SetDefault("PAYOFF_TOLERANCE", "0.01")
	viper.SetDefault("DEFAULT_PRINCIPAL_BASE", "BASE_COST_ONLY")
	viper.SetDefault("SUMMARY_CACHE_TTL", "5m")
	viper.SetDefault("STATS_CACHE_TTL", "1h")
	viper.SetDefault("SCHEDULER_STATS_REFRESH_SPEC", "0 0 2 * * *")
	viper.SetDefault("SCHEDULER_TIMEZONE", "UTC")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if _, err := decimal.NewFromString(c.Business.PayoffTolerance); err != nil {
		return fmt.Errorf("PAYOFF_TOLERANCE must be a valid decimal: %w", err)
	}

	switch c.Business.DefaultPrincipalBase {
	case "BASE_COST_ONLY", "TOTAL_COST":
	default:
		return fmt.Errorf("DEFAULT_PRINCIPAL_BASE must be BASE_COST_ONLY or TOTAL_COST")
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetPayoffTolerance returns the payoff rounding tolerance as decimal
func (c *Config) GetPayoffTolerance() decimal.Decimal {
	tolerance, _ := decimal.NewFromString(c.Business.PayoffTolerance)
	return tolerance
}
