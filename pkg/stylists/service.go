// Package stylists manages the stylist roster attached to partner salons.
package stylists

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no stylist matches.
var ErrNotFound = errors.New("stylist not found")

// Stylist is one roster entry. Level feeds commission rule matching.
type Stylist struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	Email     string    `db:"email" json:"email,omitempty"`
	SalonID   string    `db:"salon_id" json:"salonId,omitempty"`
	Level     string    `db:"level" json:"level,omitempty"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// CreateStylistRequest adds a stylist, optionally attached to a salon.
type CreateStylistRequest struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
	SalonID string `json:"salonId"`
	Level   string `json:"level"`
}

// UpdateStylistRequest is a partial update; nil keeps the stored value.
type UpdateStylistRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	SalonID  *string `json:"salonId"`
	Level    *string `json:"level"`
	IsActive *bool   `json:"isActive"`
}

// Service handles stylist operations.
type Service struct {
	db *sqlx.DB
}

// NewService creates a new stylist service.
func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// Create adds a stylist to the roster.
func (s *Service) Create(ctx context.Context, req CreateStylistRequest) (*Stylist, error) {
	now := time.Now().UTC()
	stylist := Stylist{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		SalonID:   req.SalonID,
		Level:     req.Level,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := s.db.Rebind(`INSERT INTO stylists (id, name, phone, email, salon_id, level, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query,
		stylist.ID, stylist.Name, stylist.Phone, stylist.Email, stylist.SalonID,
		stylist.Level, stylist.IsActive, stylist.CreatedAt, stylist.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to create stylist: %w", err)
	}
	return &stylist, nil
}

// GetByID retrieves one stylist.
func (s *Service) GetByID(ctx context.Context, id string) (*Stylist, error) {
	var stylist Stylist
	query := s.db.Rebind(`SELECT * FROM stylists WHERE id = ?`)
	if err := s.db.GetContext(ctx, &stylist, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get stylist: %w", err)
	}
	return &stylist, nil
}

// List returns stylists, optionally scoped to a salon, newest first.
func (s *Service) List(ctx context.Context, salonID string) ([]Stylist, error) {
	var stylists []Stylist
	if salonID != "" {
		query := s.db.Rebind(`SELECT * FROM stylists WHERE salon_id = ? ORDER BY created_at DESC`)
		if err := s.db.SelectContext(ctx, &stylists, query, salonID); err != nil {
			return nil, fmt.Errorf("failed to list stylists: %w", err)
		}
		return stylists, nil
	}
	if err := s.db.SelectContext(ctx, &stylists, `SELECT * FROM stylists ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("failed to list stylists: %w", err)
	}
	return stylists, nil
}

// Update applies the non-nil fields.
func (s *Service) Update(ctx context.Context, id string, req UpdateStylistRequest) (*Stylist, error) {
	stylist, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		stylist.Name = *req.Name
	}
	if req.Phone != nil {
		stylist.Phone = *req.Phone
	}
	if req.Email != nil {
		stylist.Email = *req.Email
	}
	if req.SalonID != nil {
		stylist.SalonID = *req.SalonID
	}
	if req.Level != nil {
		stylist.Level = *req.Level
	}
	if req.IsActive != nil {
		stylist.IsActive = *req.IsActive
	}
	stylist.UpdatedAt = time.Now().UTC()

	query := s.db.Rebind(`UPDATE stylists SET name = ?, phone = ?, email = ?, salon_id = ?, level = ?, is_active = ?, updated_at = ? WHERE id = ?`)
	if _, err := s.db.ExecContext(ctx, query,
		stylist.Name, stylist.Phone, stylist.Email, stylist.SalonID, stylist.Level,
		stylist.IsActive, stylist.UpdatedAt, stylist.ID,
	); err != nil {
		return nil, fmt.Errorf("failed to update stylist: %w", err)
	}
	return stylist, nil
}

// Delete removes a stylist from the roster.
func (s *Service) Delete(ctx context.Context, id string) error {
	query := s.db.Rebind(`DELETE FROM stylists WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete stylist: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
