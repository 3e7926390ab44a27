// Package jobs holds the background cron jobs.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"

	"github.com/salonlink/backend/pkg/leadlifecycle"
	"github.com/salonlink/backend/pkg/logger"
	"github.com/salonlink/backend/pkg/metrics"
)

// ReminderMonitor periodically counts the leads due for a reminder call and
// publishes the number as a gauge, so dashboards show the callers' backlog
// without hitting the API.
type ReminderMonitor struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
	log     logger.Logger
	cron    *cron.Cron
}

// NewReminderMonitor creates a new reminder monitor.
func NewReminderMonitor(db *sqlx.DB, m *metrics.Metrics, log logger.Logger) *ReminderMonitor {
	return &ReminderMonitor{
		db:      db,
		metrics: m,
		log:     log,
		cron:    cron.New(),
	}
}

// Start schedules the snapshot every 5 minutes and runs one immediately.
func (m *ReminderMonitor) Start() error {
	if _, err := m.cron.AddFunc("*/5 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := m.Snapshot(ctx); err != nil {
			m.log.Error("reminder snapshot failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed scheduling reminder snapshot: %w", err)
	}

	m.cron.Start()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := m.Snapshot(ctx); err != nil {
			m.log.Error("initial reminder snapshot failed", "error", err)
		}
	}()

	return nil
}

// Stop stops the cron scheduler.
func (m *ReminderMonitor) Stop() {
	m.cron.Stop()
}

// Snapshot counts leads whose next-action date has come due today and that
// have not been touched since the reminder was set, then updates the gauge.
func (m *ReminderMonitor) Snapshot(ctx context.Context) (int, error) {
	eod := leadlifecycle.EndOfDay(time.Now())

	var count int
	query := m.db.Rebind(`SELECT COUNT(*) FROM leads
		WHERE status <> 'dropped'
		  AND status NOT LIKE 'converted:%'
		  AND next_action_date IS NOT NULL
		  AND next_action_date <= ?
		  AND updated_at < next_action_date`)
	if err := m.db.GetContext(ctx, &count, query, eod); err != nil {
		return 0, fmt.Errorf("failed counting due reminders: %w", err)
	}

	if m.metrics != nil {
		m.metrics.SetRemindersDue(float64(count))
	}
	m.log.Debug("reminder snapshot", "due", count)

	return count, nil
}
