package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"
  secret_key: "test-secret"

database:
  url: "postgres://ro_user:pw@heimdall-replica:5432/heimdall?sslmode=require"
  max_open_conns: 20
  conn_max_lifetime_seconds: 120

mail:
  server: "smtp.example.com"
  port: 465
  use_tls: true
  username: "noreply@example.com"
  support_email: "support@example.com"
  timeout_seconds: 10

signup:
  rate_per_minute: 3
  blocked_log_path: "/var/log/blocked.log"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "test-secret", cfg.Server.SecretKey)

	assert.Equal(t, "postgres://ro_user:pw@heimdall-replica:5432/heimdall?sslmode=require", cfg.Database.URL)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, 3, cfg.Database.MaxIdleConns) // default
	assert.Equal(t, 120, cfg.Database.ConnMaxLifetimeSecs)

	assert.Equal(t, "smtp.example.com", cfg.Mail.Server)
	assert.Equal(t, 465, cfg.Mail.Port)
	assert.True(t, cfg.Mail.UseTLS)
	assert.Equal(t, "support@example.com", cfg.Mail.SupportEmail)
	// Default sender falls back to username when unset
	assert.Equal(t, "noreply@example.com", cfg.Mail.DefaultSender)

	assert.Equal(t, 3, cfg.Signup.RatePerMinute)
	assert.Equal(t, "/var/log/blocked.log", cfg.Signup.BlockedLogPath)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	assert.Equal(t, 280, cfg.Database.ConnMaxLifetimeSecs)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, 5, cfg.Signup.RatePerMinute)
	assert.Equal(t, "blocked_attempts.log", cfg.Signup.BlockedLogPath)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env-host/db")
	t.Setenv("MAIL_SERVER", "smtp.env.example.com")
	t.Setenv("MAIL_PORT", "2525")
	t.Setenv("MAIL_USE_TLS", "True")
	t.Setenv("MAIL_USERNAME", "env-user@example.com")
	t.Setenv("MAIL_PASSWORD", "env-pass")
	t.Setenv("MAIL_SUPPRESS_SEND", "true")
	t.Setenv("SUPPORT_EMAIL", "ops@example.com")
	t.Setenv("SECRET_KEY", "env-secret")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "postgres://env-host/db", cfg.Database.URL)
	assert.Equal(t, "smtp.env.example.com", cfg.Mail.Server)
	assert.Equal(t, 2525, cfg.Mail.Port)
	assert.True(t, cfg.Mail.UseTLS)
	assert.Equal(t, "env-user@example.com", cfg.Mail.Username)
	assert.Equal(t, "env-user@example.com", cfg.Mail.DefaultSender)
	assert.Equal(t, "env-pass", cfg.Mail.Password)
	assert.True(t, cfg.Mail.SuppressSend)
	assert.Equal(t, "ops@example.com", cfg.Mail.SupportEmail)
	assert.Equal(t, "env-secret", cfg.Server.SecretKey)
}

func TestConnMaxLifetimeDuration(t *testing.T) {
	cfg := DatabaseConfig{ConnMaxLifetimeSecs: 280}
	assert.Equal(t, "4m40s", cfg.ConnMaxLifetime().String())
}
