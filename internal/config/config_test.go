package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, env, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config."+env+".yaml"), []byte(body), 0o600))
	return dir
}

func TestLoad(t *testing.T) {
	t.Run("Load_FileAndDefaults", func(t *testing.T) {
		dir := writeConfig(t, "test", `
server:
  port: "9000"
storage:
  backend: redis
auth:
  jwt_secret: file-secret
kafka:
  brokers: ["localhost:9092"]
`)
		t.Setenv("ENV", "test")
		t.Setenv("CONFIG_DIR", dir)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.Server.Port)
		assert.Equal(t, "redis", cfg.Storage.Backend)
		assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
		assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, "hostel:document", cfg.Redis.Key)
		assert.Equal(t, 50.0, cfg.Billing.RoomChangeFee)
		assert.Equal(t, "0 6 1 * *", cfg.Billing.Schedule)
	})

	t.Run("Load_EnvOverridesFile", func(t *testing.T) {
		dir := writeConfig(t, "test", `
server:
  port: "9000"
auth:
  jwt_secret: file-secret
`)
		t.Setenv("ENV", "test")
		t.Setenv("CONFIG_DIR", dir)
		t.Setenv("SERVER_PORT", "7000")
		t.Setenv("JWT_SECRET", "env-secret")
		t.Setenv("DB_PASSWORD", "hunter2")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "7000", cfg.Server.Port)
		assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
		assert.Equal(t, "hunter2", cfg.Database.Password)
	})

	t.Run("Load_RejectsUnknownBackend", func(t *testing.T) {
		dir := writeConfig(t, "test", `
storage:
  backend: sqlite
auth:
  jwt_secret: s
`)
		t.Setenv("ENV", "test")
		t.Setenv("CONFIG_DIR", dir)

		_, err := Load()
		assert.ErrorContains(t, err, "sqlite")
	})
}

func TestValidate(t *testing.T) {
	cfg := Config{Storage: StorageConfig{Backend: "memory"}}
	assert.ErrorContains(t, cfg.Validate(), "jwt_secret")

	cfg.Auth.JWTSecret = "s"
	cfg.Billing = BillingConfig{Enabled: true}
	assert.ErrorContains(t, cfg.Validate(), "monthly_amount")

	cfg.Billing.MonthlyAmount = 1500
	assert.NoError(t, cfg.Validate())
}
