package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maestro-drills/backend/internal/config"
)

func useTempDatabase(t *testing.T) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "cli.db") +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
	t.Setenv("MAESTRO_DATABASE_DRIVER", "sqlite")
	t.Setenv("MAESTRO_DATABASE_DSN", dsn)
	t.Setenv("MAESTRO_LOG_MODE", "prod")
	t.Setenv("PORT", "")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestCommands(t *testing.T) {
	useTempDatabase(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Migrations applied (sqlite)")

	out, err = run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 12 new exercises")

	out, err = run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 0 new exercises")

	out, err = run(t, "rate", "go-001", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Rated go-001 Easy")
	assert.Contains(t, out, "Due tomorrow")

	out, err = run(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Reviews:        1")
	assert.Contains(t, out, "golang")

	out, err = run(t, "due", "--horizon", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "go-001")
}

func TestRateCommand_Errors(t *testing.T) {
	useTempDatabase(t)

	_, err := run(t, "rate", "go-001", "9")
	assert.ErrorContains(t, err, "rating must be between 1 and 4")

	_, err = run(t, "rate", "go-001", "easy")
	assert.Error(t, err)

	_, err = run(t, "rate", "missing", "3")
	assert.ErrorContains(t, err, "exercise not found")

	_, err = run(t, "rate", "only-one-arg")
	assert.Error(t, err)
}

func TestSeedCommand_File(t *testing.T) {
	useTempDatabase(t)
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := "exercises:\n  - {id: k8s-001, title: Pod Lifecycle, domain: kubernetes, difficulty: 2, steps: [apply]}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	out, err := run(t, "seed", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 1 new exercises (1 in catalog)")

	out, err = run(t, "due")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing due")
}

func TestRouter(t *testing.T) {
	useTempDatabase(t)
	a, err := newApp(func() (*config.Config, error) { return config.Load("") })
	require.NoError(t, err)
	defer a.Close()

	r := newRouter(a.service, a.log)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/stats", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"total_exercises":0`))
}
