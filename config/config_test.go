package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", DriverMemory)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("LOSTFOUND_DEFAULT_TTL", "")
	t.Setenv("LOSTFOUND_SWEEP_INTERVAL", "")
	t.Setenv("MODERATION_AUTO_REJECT_SIBLINGS", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 720*time.Hour, cfg.DefaultTTL)
	require.Zero(t, cfg.SweepInterval)
	require.False(t, cfg.AutoRejectSiblings)
	require.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", DriverMongo)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("LOSTFOUND_DEFAULT_TTL", "48h")
	t.Setenv("LOSTFOUND_SWEEP_INTERVAL", "5m")
	t.Setenv("MODERATION_AUTO_REJECT_SIBLINGS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.campus.test, http://localhost:5173")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 48*time.Hour, cfg.DefaultTTL)
	require.Equal(t, 5*time.Minute, cfg.SweepInterval)
	require.True(t, cfg.AutoRejectSiblings)
	require.Equal(t, []string{"https://admin.campus.test", "http://localhost:5173"}, cfg.CORSOrigins)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown_driver", env: map[string]string{"STORE_DRIVER": "postgres", "JWT_SECRET": "x"}},
		{name: "missing_secret", env: map[string]string{"STORE_DRIVER": DriverMongo, "JWT_SECRET": ""}},
		{name: "missing_secret_in_memory_mode", env: map[string]string{"STORE_DRIVER": DriverMemory, "JWT_SECRET": ""}},
		{name: "bad_ttl", env: map[string]string{"STORE_DRIVER": DriverMemory, "JWT_SECRET": "x", "LOSTFOUND_DEFAULT_TTL": "a month"}},
		{name: "negative_interval", env: map[string]string{"STORE_DRIVER": DriverMemory, "JWT_SECRET": "x", "LOSTFOUND_SWEEP_INTERVAL": "-1m"}},
		{name: "bad_bool", env: map[string]string{"STORE_DRIVER": DriverMemory, "JWT_SECRET": "x", "MODERATION_AUTO_REJECT_SIBLINGS": "sometimes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestConfig_Enabled(t *testing.T) {
	cfg := &Config{CloudinaryName: "demo", CloudinaryKey: "k"}
	require.False(t, cfg.CloudinaryEnabled())
	cfg.CloudinarySecret = "s"
	require.True(t, cfg.CloudinaryEnabled())

	require.False(t, cfg.EmailEnabled())
	cfg.ZeptoAPIURL, cfg.ZeptoAPIKey, cfg.EmailFrom, cfg.ModerationInbox = "u", "k", "f", "i"
	require.True(t, cfg.EmailEnabled())
}
