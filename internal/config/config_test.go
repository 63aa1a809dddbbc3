package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, DefaultSQLiteDSN, cfg.Database.DSN)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "dev", cfg.Log.Mode)
	assert.Equal(t, 3, cfg.Recommend.Limit)
	assert.Equal(t, 7, cfg.Due.HorizonDays)
	assert.True(t, cfg.Digest.Enabled)
	assert.Equal(t, 7, cfg.Digest.Hour)
	assert.True(t, cfg.Catalog.SeedOnStart)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("MAESTRO_DATABASE_DRIVER", "postgres")
	t.Setenv("MAESTRO_DATABASE_DSN", "postgres://maestro@localhost/maestro?sslmode=disable")
	t.Setenv("MAESTRO_RECOMMEND_LIMIT", "5")
	t.Setenv("PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://maestro@localhost/maestro?sslmode=disable", cfg.Database.DSN)
	assert.Equal(t, 5, cfg.Recommend.Limit)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maestro.yaml")
	content := `
server:
  port: 3000
scheduler:
  timezone: Europe/Paris
digest:
  enabled: false
  hour: 20
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.False(t, cfg.Digest.Enabled)
	assert.Equal(t, 20, cfg.Digest.Hour)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Paris", loc.String())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"driver", map[string]string{"MAESTRO_DATABASE_DRIVER": "mysql"}},
		{"hour", map[string]string{"MAESTRO_DIGEST_HOUR": "24"}},
		{"timezone", map[string]string{"MAESTRO_SCHEDULER_TIMEZONE": "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
