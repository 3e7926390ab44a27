// Package audit persists the append-only change trail produced by lead saves.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/salonlink/backend/pkg/leadlifecycle"
)

// Record is one stored history row.
type Record struct {
	ID        string    `db:"id"`
	LeadID    string    `db:"lead_id"`
	FieldName string    `db:"field_name"`
	OldValue  string    `db:"old_value"`
	NewValue  string    `db:"new_value"`
	ChangedBy string    `db:"changed_by"`
	ChangedAt time.Time `db:"changed_at"`
}

// Service writes and reads lead history rows.
type Service struct {
	db *sqlx.DB
}

// New creates a new audit service
func New(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// Append writes one row per change entry. It accepts any sqlx executor so
// callers can append inside the same transaction that saves the lead.
func (s *Service) Append(ctx context.Context, ext sqlx.ExtContext, leadID string, entries []leadlifecycle.ChangeEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := ext.Rebind(`INSERT INTO lead_history
		(id, lead_id, field_name, old_value, new_value, changed_by, changed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)

	for _, e := range entries {
		if _, err := ext.ExecContext(ctx, query,
			uuid.NewString(), leadID, e.Field, e.OldValue, e.NewValue, e.ChangedBy, e.ChangedAt,
		); err != nil {
			return fmt.Errorf("failed inserting history row for %s: %w", e.Field, err)
		}
	}
	return nil
}

// ListByLead returns the change trail for a lead, oldest first.
func (s *Service) ListByLead(ctx context.Context, leadID string) ([]Record, error) {
	var records []Record
	query := s.db.Rebind(`SELECT id, lead_id, field_name, old_value, new_value, changed_by, changed_at
		FROM lead_history WHERE lead_id = ? ORDER BY changed_at ASC, id ASC`)
	if err := s.db.SelectContext(ctx, &records, query, leadID); err != nil {
		return nil, fmt.Errorf("failed listing lead history: %w", err)
	}
	return records, nil
}

// DeleteByLead removes the trail for a lead. Called when the lead itself is
// deleted so no orphan rows remain.
func (s *Service) DeleteByLead(ctx context.Context, ext sqlx.ExtContext, leadID string) error {
	query := ext.Rebind(`DELETE FROM lead_history WHERE lead_id = ?`)
	if _, err := ext.ExecContext(ctx, query, leadID); err != nil {
		return fmt.Errorf("failed deleting lead history: %w", err)
	}
	return nil
}
