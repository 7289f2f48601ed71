package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Load(t *testing.T) {
	t.Run("defaults port to 8080", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/uno_tracker")
		t.Setenv("JWT_SECRET_KEY", "secret")
		t.Setenv("SERVER_PORT", "")

		cfg, err := Load()

		require.NoError(t, err)
		require.Equal(t, 8080, cfg.ServerPort)
		require.Equal(t, "postgres://localhost/uno_tracker", cfg.DatabaseURL)
	})

	t.Run("missing database url", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("JWT_SECRET_KEY", "secret")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/uno_tracker")
		t.Setenv("JWT_SECRET_KEY", "")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("rejects bad port", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/uno_tracker")
		t.Setenv("JWT_SECRET_KEY", "secret")
		t.Setenv("SERVER_PORT", "not-a-port")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("rejects out of range port", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/uno_tracker")
		t.Setenv("JWT_SECRET_KEY", "secret")
		t.Setenv("SERVER_PORT", "70000")

		_, err := Load()
		require.Error(t, err)
	})
}
