package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for a config file unless told otherwise.
const DefaultPath = "configs/config.yaml"

// Config structure represents the application configuration
type Config struct {
	Database struct {
		Host            string `yaml:"host" env:"REGISTRAR_DB_HOST"`
		Port            string `yaml:"port" env:"REGISTRAR_DB_PORT"`
		User            string `yaml:"user" env:"REGISTRAR_DB_USER"`
		Password        string `yaml:"password" env:"REGISTRAR_DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"REGISTRAR_DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"REGISTRAR_DB_SSLMODE"`
		MinConns        int    `yaml:"min_conns" env:"REGISTRAR_DB_MIN_CONNS"`
		MaxConns        int    `yaml:"max_conns" env:"REGISTRAR_DB_MAX_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"REGISTRAR_DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	Session struct {
		Secret     string `yaml:"secret" env:"REGISTRAR_SESSION_SECRET"`
		Expiration string `yaml:"expiration" env:"REGISTRAR_SESSION_EXPIRATION"`
		Issuer     string `yaml:"issuer" env:"REGISTRAR_SESSION_ISSUER"`
	} `yaml:"session"`

	Logging struct {
		Level  string `yaml:"level" env:"REGISTRAR_LOG_LEVEL"`
		Format string `yaml:"format" env:"REGISTRAR_LOG_FORMAT"`
	} `yaml:"logging"`

	Registration struct {
		// StoreTimeout bounds every store call that arrives without a deadline.
		StoreTimeout string `yaml:"store_timeout" env:"REGISTRAR_STORE_TIMEOUT"`
		// AdmissionTimeout bounds a gated registration change, including the wait for the offering slot.
		AdmissionTimeout string `yaml:"admission_timeout" env:"REGISTRAR_ADMISSION_TIMEOUT"`
		CycleDetection   bool   `yaml:"cycle_detection" env:"REGISTRAR_CYCLE_DETECTION"`
	} `yaml:"registration"`

	Metrics struct {
		Enabled bool `yaml:"enabled" env:"REGISTRAR_METRICS_ENABLED"`
	} `yaml:"metrics"`
}

// LoadConfig loads configuration from a file and environment variables.
// A missing file is not an error; defaults and environment still apply.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "registrar"
	config.Database.SSLMode = "disable"
	config.Database.MinConns = 2
	config.Database.MaxConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.Session.Expiration = "12h"
	config.Session.Issuer = "registrar"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Registration.StoreTimeout = "5s"
	config.Registration.AdmissionTimeout = "10s"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.Database.MaxConns < config.Database.MinConns {
		return fmt.Errorf("database max_conns (%d) must be at least min_conns (%d)",
			config.Database.MaxConns, config.Database.MinConns)
	}

	if config.Session.Secret == "" {
		return fmt.Errorf("session secret is required")
	}

	durations := map[string]string{
		"database conn_max_lifetime":     config.Database.ConnMaxLifetime,
		"session expiration":             config.Session.Expiration,
		"registration store_timeout":     config.Registration.StoreTimeout,
		"registration admission_timeout": config.Registration.AdmissionTimeout,
	}
	for name, value := range durations {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
