package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CUknot/roomchat/services"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()

	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, 168*time.Hour, cfg.TokenTTL)
	require.Equal(t, "chat:events", cfg.RedisChannel)
	require.Empty(t, cfg.RedisURL)
	require.Equal(t, services.DeleteToUser, cfg.DeleteAudience())
	require.Equal(t,
		"host=localhost user=postgres password=postgres dbname=chatapp port=5432 sslmode=disable TimeZone=UTC",
		cfg.DSN())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("DELETE_EVENT_AUDIENCE", "room")

	cfg, err := Load()

	require.NoError(t, err)
	require.Equal(t, time.Hour, cfg.TokenTTL)
	require.Equal(t, services.DeleteToRoom, cfg.DeleteAudience())
	require.Contains(t, cfg.DSN(), "host=db")
	require.Contains(t, cfg.DSN(), "port=6543")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing secret", env: map[string]string{}},
		{name: "bad audience", env: map[string]string{"JWT_SECRET": "s", "DELETE_EVENT_AUDIENCE": "everyone"}},
		{name: "negative ttl", env: map[string]string{"JWT_SECRET": "s", "TOKEN_TTL": "-1h"}},
		{name: "bad log format", env: map[string]string{"JWT_SECRET": "s", "LOG_FORMAT": "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()

			require.Error(t, err)
		})
	}
}
