package exercises

import (
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/require"

	"github.com/maestro-drills/backend/internal/catalog"
	"github.com/maestro-drills/backend/internal/database"
	"github.com/maestro-drills/backend/internal/logger"
	"github.com/maestro-drills/backend/internal/srs"
)

var testToday = civil.Date{Year: 2026, Month: 3, Day: 14}

var testCatalog = []catalog.Entry{
	{ID: "go-002", Title: "Channels", Domain: "golang", Difficulty: 2, Steps: []string{"make", "send", "close"}},
	{ID: "linux-003", Title: "systemd Units", Domain: "linux", Difficulty: 3, Steps: []string{"write unit", "enable"}},
	{ID: "go-001", Title: "Goroutines", Domain: "golang", Difficulty: 1, Steps: []string{"spawn", "wait"}},
	{ID: "net-001", Title: "TCP Handshake", Domain: "networking", Difficulty: 1, Steps: []string{"capture"}},
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := database.Config{
		Driver: database.DriverSQLite,
		DSN: "file:" + filepath.Join(t.TempDir(), "test.db") +
			"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite",
	}
	require.NoError(t, database.Migrate(cfg))

	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStore(db, cfg.Driver)
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(newTestStore(t), srs.FixedClock{Date: testToday}, logger.Nop(), Options{})
	svc.now = func() time.Time {
		return testToday.In(time.UTC).Add(9 * time.Hour)
	}
	return svc
}

func seededService(t *testing.T) *Service {
	t.Helper()
	svc := newTestService(t)
	_, err := svc.Seed(t.Context(), testCatalog)
	require.NoError(t, err)
	return svc
}

// setToday moves the service clock.
func (s *Service) setToday(d civil.Date) {
	s.clock = srs.FixedClock{Date: d}
}
