// Package config loads application configuration from file and environment.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Cassidy    CassidyConfig    `yaml:"cassidy" mapstructure:"cassidy"`
	Enrichment EnrichmentConfig `yaml:"enrichment" mapstructure:"enrichment"`
	Status     StatusConfig     `yaml:"status" mapstructure:"status"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// CassidyConfig holds extraction provider settings.
type CassidyConfig struct {
	ProfileWorkflowURL string  `yaml:"profile_workflow_url" mapstructure:"profile_workflow_url"`
	CompanyWorkflowURL string  `yaml:"company_workflow_url" mapstructure:"company_workflow_url"`
	TimeoutSecs        int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	ConnectTimeoutSecs int     `yaml:"connect_timeout_secs" mapstructure:"connect_timeout_secs"`
	MaxAttempts        int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	BackoffBaseSecs    int     `yaml:"backoff_base_secs" mapstructure:"backoff_base_secs"`
	BackoffMultiplier  float64 `yaml:"backoff_multiplier" mapstructure:"backoff_multiplier"`
	BackoffMaxSecs     int     `yaml:"backoff_max_secs" mapstructure:"backoff_max_secs"`
}

// EnrichmentConfig controls company enrichment.
type EnrichmentConfig struct {
	Enabled          bool `yaml:"enabled" mapstructure:"enabled"`
	CompanyDelaySecs int  `yaml:"company_delay_secs" mapstructure:"company_delay_secs"`
}

// CompanyDelay returns the configured inter-company delay as a duration.
func (c EnrichmentConfig) CompanyDelay() time.Duration {
	return time.Duration(c.CompanyDelaySecs) * time.Second
}

// StatusConfig controls the in-memory status tracker sweep.
type StatusConfig struct {
	RetentionHours    int `yaml:"retention_hours" mapstructure:"retention_hours"`
	SweepIntervalMins int `yaml:"sweep_interval_mins" mapstructure:"sweep_interval_mins"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port   int    `yaml:"port" mapstructure:"port"`
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INGEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("cassidy.timeout_secs", 300)
	v.SetDefault("cassidy.connect_timeout_secs", 30)
	v.SetDefault("cassidy.max_attempts", 3)
	v.SetDefault("cassidy.backoff_base_secs", 4)
	v.SetDefault("cassidy.backoff_multiplier", 2.0)
	v.SetDefault("cassidy.backoff_max_secs", 60)
	v.SetDefault("enrichment.enabled", true)
	v.SetDefault("enrichment.company_delay_secs", 10)
	v.SetDefault("status.retention_hours", 24)
	v.SetDefault("status.sweep_interval_mins", 10)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "ingest.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings required for ingestion are present.
func (c *Config) Validate() error {
	var missing []string
	if c.Cassidy.ProfileWorkflowURL == "" {
		missing = append(missing, "cassidy.profile_workflow_url")
	}
	if c.Enrichment.Enabled && c.Cassidy.CompanyWorkflowURL == "" {
		missing = append(missing, "cassidy.company_workflow_url")
	}
	if len(missing) > 0 {
		return eris.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
