package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_ACCESS_SECRET", "access")
	t.Setenv("AUTH_REFRESH_SECRET", "refresh")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/coop")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DBTypePostgres, cfg.DBType)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTTL())
	assert.False(t, cfg.Auth.RevocationEnabled)
	assert.False(t, cfg.App.IsProduction())
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
}

func TestValidateRejectsMissingSecrets(t *testing.T) {
	cfg := &Config{DBType: DBTypePostgres, Postgres: PostgresConfig{DSN: "x"}}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_ACCESS_SECRET")
	assert.Contains(t, err.Error(), "AUTH_REFRESH_SECRET")
}

func TestValidateRejectsSharedSecret(t *testing.T) {
	cfg := &Config{
		DBType:   DBTypePostgres,
		Postgres: PostgresConfig{DSN: "x"},
		Auth:     AuthConfig{AccessSecret: "same", RefreshSecret: "same"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestValidateBackendSelection(t *testing.T) {
	auth := AuthConfig{AccessSecret: "a", RefreshSecret: "r"}

	assert.Error(t, (&Config{DBType: DBTypeMongo, Auth: auth}).Validate())
	assert.NoError(t, (&Config{DBType: DBTypeMongo, Mongo: MongoConfig{URI: "mongodb://x"}, Auth: auth}).Validate())
	assert.NoError(t, (&Config{DBType: DBTypeMemory, Auth: auth}).Validate())
	assert.Error(t, (&Config{DBType: "supabase", Auth: auth}).Validate())
}

func TestIsProduction(t *testing.T) {
	assert.True(t, AppConfig{Env: "production"}.IsProduction())
	assert.True(t, AppConfig{Env: "PROD"}.IsProduction())
	assert.False(t, AppConfig{Env: "staging"}.IsProduction())
}
