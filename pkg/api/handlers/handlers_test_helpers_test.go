package handlers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/salonlink/backend/pkg/database"
	"github.com/salonlink/backend/pkg/metrics"

	_ "github.com/mattn/go-sqlite3"
)

var (
	metricsOnce   sync.Once
	sharedMetrics *metrics.Metrics
)

// testMetrics returns a process-wide metrics instance. Prometheus
// collectors register globally, so creating one per test would panic.
func testMetrics() *metrics.Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = metrics.New()
	})
	return sharedMetrics
}

// newTestDB opens an in-memory database with the schema applied.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// every sqlite :memory: connection is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, database.Migrate(ctx, db))

	return db
}
