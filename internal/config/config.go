package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Mail     MailConfig     `yaml:"mail"`
	Signup   SignupConfig   `yaml:"signup"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port      int    `yaml:"port"`
	Host      string `yaml:"host"`
	SecretKey string `yaml:"secret_key"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	// Allow override via environment
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig holds the read-only reference database settings.
// The connection string points at the Heimdall replica; this service
// never writes to it.
type DatabaseConfig struct {
	URL                 string `yaml:"url"`
	MaxOpenConns        int    `yaml:"max_open_conns"`
	MaxIdleConns        int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeSecs int    `yaml:"conn_max_lifetime_seconds"`
}

// ConnMaxLifetime returns the connection recycle age as a duration
func (c DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeSecs) * time.Second
}

// MailConfig holds SMTP relay settings for support notifications
type MailConfig struct {
	Server         string `yaml:"server"`
	Port           int    `yaml:"port"`
	UseTLS         bool   `yaml:"use_tls"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	DefaultSender  string `yaml:"default_sender"`
	SupportEmail   string `yaml:"support_email"`
	SuppressSend   bool   `yaml:"suppress_send"` // set true to disable email sending (for testing)
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c MailConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SignupConfig holds signup endpoint protection settings
type SignupConfig struct {
	RatePerMinute  int    `yaml:"rate_per_minute"`
	BlockedLogPath string `yaml:"blocked_log_path"`
}

// Load reads and parses the configuration file. A missing file is not an
// error: deployments that configure purely through environment variables
// start from defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 3
	}
	if cfg.Database.ConnMaxLifetimeSecs == 0 {
		// The replica's firewall kills idle connections around the 5 minute
		// mark; recycle pooled connections before they hit it.
		cfg.Database.ConnMaxLifetimeSecs = 280
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = 587
	}
	if cfg.Mail.TimeoutSeconds == 0 {
		cfg.Mail.TimeoutSeconds = 30
	}
	if cfg.Mail.DefaultSender == "" {
		cfg.Mail.DefaultSender = cfg.Mail.Username
	}
	if cfg.Signup.RatePerMinute == 0 {
		cfg.Signup.RatePerMinute = 5
	}
	if cfg.Signup.BlockedLogPath == "" {
		cfg.Signup.BlockedLogPath = "blocked_attempts.log"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("HEIMDALL_RO_DB_URI"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("MAIL_SERVER"); v != "" {
		cfg.Mail.Server = v
	}
	if v := os.Getenv("MAIL_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Mail.Port = port
		}
	}
	if v := os.Getenv("MAIL_USE_TLS"); v != "" {
		cfg.Mail.UseTLS = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("MAIL_USERNAME"); v != "" {
		cfg.Mail.Username = v
		cfg.Mail.DefaultSender = v
	}
	if v := os.Getenv("MAIL_PASSWORD"); v != "" {
		cfg.Mail.Password = v
	}
	if v := os.Getenv("MAIL_DEFAULT_SENDER"); v != "" {
		cfg.Mail.DefaultSender = v
	}
	if v := os.Getenv("MAIL_SUPPRESS_SEND"); v != "" {
		cfg.Mail.SuppressSend = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("SUPPORT_EMAIL"); v != "" {
		cfg.Mail.SupportEmail = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		cfg.Server.SecretKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	return cfg, nil
}
