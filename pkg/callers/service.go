// Package callers manages lead caller accounts. Callers are created by
// admins; their password is generated server-side and shown exactly once.
package callers

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
)

var (
	// ErrNotFound is returned when no caller matches.
	ErrNotFound = errors.New("lead caller not found")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
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

// Service handles lead caller account operations.
type Service struct {
	db *sqlx.DB
}

// NewService creates a new caller service.
func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// Create registers a caller account. When the request carries no password a
// random one is generated and returned in the response, the only time it is
// ever exposed.
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
		Role:         models.RoleLeadCaller,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	insert := s.db.Rebind(`INSERT INTO users (id, name, email, phone, password_hash, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, insert,
		row.ID, row.Name, row.Email, row.Phone, row.PasswordHash, row.Role, row.IsActive, row.CreatedAt, row.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to create caller: %w", err)
	}

	return &models.CreatedUserResponse{
		UserResponse:      row.toResponse(),
		GeneratedPassword: generated,
	}, nil
}

// List returns every lead caller account, newest first.
func (s *Service) List(ctx context.Context) ([]models.UserResponse, error) {
	var rows []userRow
	query := s.db.Rebind(`SELECT * FROM users WHERE role = ? ORDER BY created_at DESC`)
	if err := s.db.SelectContext(ctx, &rows, query, models.RoleLeadCaller); err != nil {
		return nil, fmt.Errorf("failed to list callers: %w", err)
	}

	out := make([]models.UserResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toResponse())
	}
	return out, nil
}

// SetStatus toggles whether the caller can log in and receive assignments.
func (s *Service) SetStatus(ctx context.Context, id string, active bool) (*models.UserResponse, error) {
	row, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	query := s.db.Rebind(`UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`)
	if _, err := s.db.ExecContext(ctx, query, active, time.Now().UTC(), id); err != nil {
		return nil, fmt.Errorf("failed to set caller status: %w", err)
	}

	row.IsActive = active
	resp := row.toResponse()
	return &resp, nil
}

// ResetPassword replaces the caller's password.
func (s *Service) ResetPassword(ctx context.Context, id, newPassword string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed hashing password: %w", err)
	}

	query := s.db.Rebind(`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`)
	if _, err := s.db.ExecContext(ctx, query, hash, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return nil
}

// Delete removes a caller account.
func (s *Service) Delete(ctx context.Context, id string) error {
	query := s.db.Rebind(`DELETE FROM users WHERE id = ? AND role = ?`)
	res, err := s.db.ExecContext(ctx, query, id, models.RoleLeadCaller)
	if err != nil {
		return fmt.Errorf("failed to delete caller: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) get(ctx context.Context, id string) (*userRow, error) {
	var row userRow
	query := s.db.Rebind(`SELECT * FROM users WHERE id = ? AND role = ?`)
	if err := s.db.GetContext(ctx, &row, query, id, models.RoleLeadCaller); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get caller: %w", err)
	}
	return &row, nil
}

func (r userRow) toResponse() models.UserResponse {
	return models.UserResponse{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Role:      r.Role,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
	}
}
