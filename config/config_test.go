package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "circles", cfg.Database.DBName)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 24, cfg.JWT.ExpireHours)
	assert.Equal(t, 20, cfg.RateLimit.Requests)
	assert.Equal(t, 60, cfg.RateLimit.WindowSec)
	assert.Equal(t, 3, cfg.Moderation.ReviewThreshold)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_EXPIRE_HOURS", "2")
	t.Setenv("MODERATION_REVIEW_THRESHOLD", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 2, cfg.JWT.ExpireHours)
	assert.Equal(t, 10, cfg.Moderation.ReviewThreshold)
}

func TestLoadIgnoresMalformedInt(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS", "plenty")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.RateLimit.Requests)
}

func TestDatabaseDSN(t *testing.T) {
	c := DatabaseConfig{
		Host: "db", Port: "5432", User: "app", Password: "pw",
		DBName: "circles", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://app:pw@db:5432/circles?sslmode=disable", c.DSN())

	c.URL = "postgres://elsewhere/other"
	assert.Equal(t, "postgres://elsewhere/other", c.DSN())
}
