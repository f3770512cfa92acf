package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DevDefaults(t *testing.T) {
	t.Setenv("APP_MODE", "dev")
	t.Setenv("DEV_DB_NAME", "replate_dev")
	t.Setenv("FRONTEND_URL", "https://replate.id/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsDev())
	assert.Equal(t, "replate_dev", cfg.Database.DBName)
	assert.Equal(t, "https://replate.id", cfg.FrontendURL)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, 8, cfg.Password.MinLength)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL())
	assert.Equal(t, 24*time.Hour, cfg.VerifyTTL())
	assert.Equal(t, time.Hour, cfg.ResetTTL())
}

func TestLoad_ModePrefixes(t *testing.T) {
	t.Setenv("APP_MODE", "prod")
	t.Setenv("PROD_JWT_SECRET", "prod-secret")
	t.Setenv("DEV_JWT_SECRET", "dev-secret")
	t.Setenv("PROD_DB_HOST", "db.internal")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prod-secret", cfg.JWT.Secret)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}

func TestLoad_Rejects(t *testing.T) {
	t.Setenv("APP_MODE", "staging")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("APP_MODE", "prod")
	t.Setenv("PROD_JWT_SECRET", "")
	_, err = Load()
	assert.ErrorContains(t, err, "PROD_JWT_SECRET")
}

func TestGetAllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "")
	assert.Equal(t, "*", (&Config{AppMode: "dev"}).GetAllowedOrigins())
	assert.Equal(t, "https://replate.id", (&Config{AppMode: "prod", FrontendURL: "https://replate.id"}).GetAllowedOrigins())

	t.Setenv("ALLOWED_ORIGINS", "https://a.id,https://b.id")
	assert.Equal(t, "https://a.id,https://b.id", (&Config{AppMode: "prod"}).GetAllowedOrigins())
}
