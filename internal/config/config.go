// Package config loads runtime configuration with Viper.
//
// Values are layered: built-in defaults < optional config.yaml < environment
// variables prefixed with STORE_ (monitoring.threshold is read from
// STORE_MONITORING_THRESHOLD).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "STORE"

// defaultJWTSecret is only acceptable outside production.
const defaultJWTSecret = "change-me-in-production"

// Config captures runtime configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

type ServerConfig struct {
	Environment     string        `mapstructure:"environment"`
	Port            string        `mapstructure:"port"`
	FrontendDir     string        `mapstructure:"frontend_dir"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig selects the gorm dialector. Path is used by sqlite, DSN by postgres.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

type LoggingConfig struct {
	Debug bool   `mapstructure:"debug"`
	Dir   string `mapstructure:"dir"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// MonitoringConfig parameterizes the suspicious-activity evaluator.
// Window, Threshold and Interval left at zero are taken from Policy.
type MonitoringConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Policy          string        `mapstructure:"policy"`
	Window          time.Duration `mapstructure:"window"`
	Threshold       int           `mapstructure:"threshold"`
	Interval        time.Duration `mapstructure:"interval"`
	Reason          string        `mapstructure:"reason"`
	RunOnStart      bool          `mapstructure:"run_on_start"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
	LogWriteTimeout time.Duration `mapstructure:"log_write_timeout"`
}

// MonitoringPolicy is a named window/threshold/interval preset.
type MonitoringPolicy struct {
	Window    time.Duration
	Threshold int
	Interval  time.Duration
}

const (
	PolicyDefault = "default"
	PolicyStrict  = "strict"
)

// Policies holds the two supported presets: a broad one for production traffic
// and a strict one that flags almost any burst.
var Policies = map[string]MonitoringPolicy{
	PolicyDefault: {Window: 5 * time.Minute, Threshold: 50, Interval: 5 * time.Minute},
	PolicyStrict:  {Window: time.Minute, Threshold: 2, Interval: 30 * time.Second},
}

// Load reads configuration from configPath (or config.yaml in the working
// directory when empty) and the environment, then validates it.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Monitoring.applyPolicy()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Database.Driver == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return nil, fmt.Errorf("ensure data directory: %w", err)
		}
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.frontend_dir", filepath.Clean(filepath.Join("..", "frontend", "out")))
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", filepath.Join("data", "store.db"))
	v.SetDefault("database.dsn", "")

	v.SetDefault("logging.debug", false)
	v.SetDefault("logging.dir", filepath.Join("data", "logs"))

	v.SetDefault("auth.jwt_secret", defaultJWTSecret)
	v.SetDefault("auth.token_ttl", "24h")

	v.SetDefault("monitoring.enabled", true)
	v.SetDefault("monitoring.policy", PolicyDefault)
	v.SetDefault("monitoring.window", 0)
	v.SetDefault("monitoring.threshold", 0)
	v.SetDefault("monitoring.interval", 0)
	v.SetDefault("monitoring.reason", "Multiple operations in short time")
	v.SetDefault("monitoring.run_on_start", true)
	v.SetDefault("monitoring.query_timeout", "30s")
	v.SetDefault("monitoring.log_write_timeout", "2s")
}

// bindEnvVars binds every known key explicitly; AutomaticEnv alone is not
// consulted by Unmarshal for nested keys.
func bindEnvVars(v *viper.Viper) error {
	for _, key := range v.AllKeys() {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind env var %q: %w", key, err)
		}
	}
	return nil
}

// applyPolicy fills unset window/threshold/interval from the selected preset.
func (m *MonitoringConfig) applyPolicy() {
	p, ok := Policies[m.Policy]
	if !ok {
		return
	}
	if m.Window == 0 {
		m.Window = p.Window
	}
	if m.Threshold == 0 {
		m.Threshold = p.Threshold
	}
	if m.Interval == 0 {
		m.Interval = p.Interval
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}

	if c.IsProduction() && c.Auth.JWTSecret == defaultJWTSecret {
		return errors.New("auth.jwt_secret must be set in production")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be positive")
	}

	m := c.Monitoring
	if _, ok := Policies[m.Policy]; !ok {
		return fmt.Errorf("unknown monitoring.policy %q", m.Policy)
	}
	if m.Window <= 0 {
		return errors.New("monitoring.window must be positive")
	}
	if m.Threshold <= 0 {
		return errors.New("monitoring.threshold must be positive")
	}
	if m.Interval <= 0 {
		return errors.New("monitoring.interval must be positive")
	}
	return nil
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}
