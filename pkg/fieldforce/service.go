// Package fieldforce manages the on-ground agents who onboard salons and
// the mapping of which salons each agent covers.
package fieldforce

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/salonlink/backend/pkg/auth"
	"github.com/salonlink/backend/pkg/models"
	"github.com/salonlink/backend/pkg/salons"
)

var (
	// ErrNotFound is returned when no agent matches.
	ErrNotFound = errors.New("field agent not found")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrSalonNotFound is returned when assigning a salon that does not exist.
	ErrSalonNotFound = errors.New("salon not found")
)

type userRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	Phone        string    `db:"phone"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Service handles field agent operations.
type Service struct {
	db     *sqlx.DB
	salons *salons.Service
}

// NewService creates a new field force service.
func NewService(db *sqlx.DB, salonSvc *salons.Service) *Service {
	return &Service{db: db, salons: salonSvc}
}

// Create registers a field agent account, generating a password when none
// is supplied.
func (s *Service) Create(ctx context.Context, req models.CreateUserRequest) (*models.CreatedUserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var exists int
	check := s.db.Rebind(`SELECT COUNT(*) FROM users WHERE email = ?`)
	if err := s.db.GetContext(ctx, &exists, check, email); err != nil {
		return nil, fmt.Errorf("failed checking email: %w", err)
	}
	if exists > 0 {
		return nil, ErrEmailTaken
	}

	password := req.Password
	generated := ""
	if password == "" {
		var err error
		password, err = auth.GeneratePassword(12)
		if err != nil {
			return nil, fmt.Errorf("failed generating password: %w", err)
		}
		generated = password
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed hashing password: %w", err)
	}

	now := time.Now().UTC()
	row := userRow{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         models.RoleFieldAgent,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	insert := s.db.Rebind(`INSERT INTO users (id, name, email, phone, password_hash, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, insert,
		row.ID, row.Name, row.Email, row.Phone, row.PasswordHash, row.Role, row.IsActive, row.CreatedAt, row.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	return &models.CreatedUserResponse{
		UserResponse: models.UserResponse{
			ID:        row.ID,
			Name:      row.Name,
			Email:     row.Email,
			Phone:     row.Phone,
			Role:      row.Role,
			IsActive:  row.IsActive,
			CreatedAt: row.CreatedAt,
		},
		GeneratedPassword: generated,
	}, nil
}

// List returns every field agent account, newest first.
func (s *Service) List(ctx context.Context) ([]models.UserResponse, error) {
	var rows []userRow
	query := s.db.Rebind(`SELECT * FROM users WHERE role = ? ORDER BY created_at DESC`)
	if err := s.db.SelectContext(ctx, &rows, query, models.RoleFieldAgent); err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}

	out := make([]models.UserResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.UserResponse{
			ID:        row.ID,
			Name:      row.Name,
			Email:     row.Email,
			Phone:     row.Phone,
			Role:      row.Role,
			IsActive:  row.IsActive,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

// SetStatus toggles whether the agent can log in.
func (s *Service) SetStatus(ctx context.Context, id string, active bool) error {
	query := s.db.Rebind(`UPDATE users SET is_active = ?, updated_at = ? WHERE id = ? AND role = ?`)
	res, err := s.db.ExecContext(ctx, query, active, time.Now().UTC(), id, models.RoleFieldAgent)
	if err != nil {
		return fmt.Errorf("failed to set agent status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignSalon puts a salon on the agent's route. Assigning the same salon
// twice is a no-op.
func (s *Service) AssignSalon(ctx context.Context, agentID, salonID string) error {
	if err := s.ensureAgent(ctx, agentID); err != nil {
		return err
	}
	if _, err := s.salons.GetByID(ctx, salonID); err != nil {
		if errors.Is(err, salons.ErrNotFound) {
			return ErrSalonNotFound
		}
		return err
	}

	var exists int
	check := s.db.Rebind(`SELECT COUNT(*) FROM salon_agents WHERE salon_id = ? AND agent_id = ?`)
	if err := s.db.GetContext(ctx, &exists, check, salonID, agentID); err != nil {
		return fmt.Errorf("failed checking assignment: %w", err)
	}
	if exists > 0 {
		return nil
	}

	insert := s.db.Rebind(`INSERT INTO salon_agents (salon_id, agent_id, assigned_at) VALUES (?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, insert, salonID, agentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to assign salon: %w", err)
	}
	return nil
}

// UnassignSalon takes a salon off the agent's route.
func (s *Service) UnassignSalon(ctx context.Context, agentID, salonID string) error {
	query := s.db.Rebind(`DELETE FROM salon_agents WHERE salon_id = ? AND agent_id = ?`)
	if _, err := s.db.ExecContext(ctx, query, salonID, agentID); err != nil {
		return fmt.Errorf("failed to unassign salon: %w", err)
	}
	return nil
}

// SalonsForAgent lists the salons on the agent's route, most recently
// assigned first.
func (s *Service) SalonsForAgent(ctx context.Context, agentID string) ([]salons.Salon, error) {
	if err := s.ensureAgent(ctx, agentID); err != nil {
		return nil, err
	}

	var ids []string
	query := s.db.Rebind(`SELECT salon_id FROM salon_agents WHERE agent_id = ? ORDER BY assigned_at DESC`)
	if err := s.db.SelectContext(ctx, &ids, query, agentID); err != nil {
		return nil, fmt.Errorf("failed listing assignments: %w", err)
	}

	out := make([]salons.Salon, 0, len(ids))
	for _, id := range ids {
		salon, err := s.salons.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, salons.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, *salon)
	}
	return out, nil
}

func (s *Service) ensureAgent(ctx context.Context, id string) error {
	var count int
	query := s.db.Rebind(`SELECT COUNT(*) FROM users WHERE id = ? AND role = ?`)
	if err := s.db.GetContext(ctx, &count, query, id, models.RoleFieldAgent); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to check agent: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
