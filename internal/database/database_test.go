package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	return Config{
		Driver: DriverSQLite,
		DSN:    "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
	}
}

func TestMigrate_SQLite(t *testing.T) {
	cfg := testConfig(t)

	require.NoError(t, Migrate(cfg))
	// Second run is a no-op.
	require.NoError(t, Migrate(cfg))

	db, err := Connect(cfg)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"exercises", "reviews"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestConnect_UnknownDriver(t *testing.T) {
	_, err := Connect(Config{Driver: "mysql", DSN: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown database driver")

	assert.Error(t, Migrate(Config{Driver: "mysql"}))
}

func TestRebind(t *testing.T) {
	query := `UPDATE exercises SET title = $1, domain = $2 WHERE id = $3`

	assert.Equal(t, `UPDATE exercises SET title = ?, domain = ? WHERE id = ?`, Rebind(DriverSQLite, query))
	assert.Equal(t, query, Rebind(DriverPostgres, query))
}

func TestRebind_RejectsReusedOrUnorderedPlaceholders(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"reused", `SELECT id FROM exercises WHERE domain = $1 OR title = $1`},
		{"out of order", `UPDATE exercises SET title = $2 WHERE id = $1`},
		{"gap", `SELECT id FROM exercises WHERE id = $2`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, func() { Rebind(DriverSQLite, tt.query) })
			assert.Panics(t, func() { Rebind(DriverPostgres, tt.query) })
		})
	}

	assert.NotPanics(t, func() { Rebind(DriverSQLite, `SELECT COUNT(*) FROM reviews`) })
}
