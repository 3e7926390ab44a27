// Package customers manages the people behind leads. A customer is keyed by
// phone number; every new lead either reuses the existing customer or
// creates one.
package customers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no customer matches.
var ErrNotFound = errors.New("customer not found")

// Customer is one stored customer row.
type Customer struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone"`
	Address   string    `db:"address" json:"address,omitempty"`
	City      string    `db:"city" json:"city,omitempty"`
	Pincode   string    `db:"pincode" json:"pincode,omitempty"`
	Notes     string    `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Service handles customer operations.
type Service struct {
	db *sqlx.DB
}

// NewService creates a new customer service.
func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// GetByID retrieves a customer by ID.
func (s *Service) GetByID(ctx context.Context, id string) (*Customer, error) {
	var c Customer
	query := s.db.Rebind(`SELECT * FROM customers WHERE id = ?`)
	if err := s.db.GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

// GetByPhone retrieves a customer by normalized phone number.
func (s *Service) GetByPhone(ctx context.Context, phone string) (*Customer, error) {
	var c Customer
	query := s.db.Rebind(`SELECT * FROM customers WHERE phone = ?`)
	if err := s.db.GetContext(ctx, &c, query, phone); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

// UpsertByPhone returns the customer with the given phone, creating one when
// it does not exist. Callers pass the phone already in E.164 form.
func (s *Service) UpsertByPhone(ctx context.Context, ext sqlx.ExtContext, name, phone string) (*Customer, error) {
	var c Customer
	query := ext.Rebind(`SELECT * FROM customers WHERE phone = ?`)
	err := sqlx.GetContext(ctx, ext, &c, query, phone)
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}

	now := time.Now().UTC()
	c = Customer{
		ID:        uuid.NewString(),
		Name:      name,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	insert := ext.Rebind(`INSERT INTO customers (id, name, phone, address, city, pincode, notes, created_at, updated_at)
		VALUES (?, ?, ?, '', '', '', '', ?, ?)`)
	if _, err := ext.ExecContext(ctx, insert, c.ID, c.Name, c.Phone, c.CreatedAt, c.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return &c, nil
}

// UpdateFields is a partial update proposal for a customer. Nil means keep.
type UpdateFields struct {
	Name    *string
	Address *string
	City    *string
	Pincode *string
	Notes   *string
}

// Update applies the non-nil fields. Empty strings are dropped so a blank
// form field never erases stored contact details.
func (s *Service) Update(ctx context.Context, ext sqlx.ExtContext, id string, fields UpdateFields) error {
	var c Customer
	query := ext.Rebind(`SELECT * FROM customers WHERE id = ?`)
	if err := sqlx.GetContext(ctx, ext, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load customer: %w", err)
	}

	changed := false
	apply := func(dst *string, src *string) {
		if src != nil && *src != "" && *src != *dst {
			*dst = *src
			changed = true
		}
	}
	apply(&c.Name, fields.Name)
	apply(&c.Address, fields.Address)
	apply(&c.City, fields.City)
	apply(&c.Pincode, fields.Pincode)
	apply(&c.Notes, fields.Notes)

	if !changed {
		return nil
	}

	c.UpdatedAt = time.Now().UTC()
	update := ext.Rebind(`UPDATE customers SET name = ?, address = ?, city = ?, pincode = ?, notes = ?, updated_at = ? WHERE id = ?`)
	if _, err := ext.ExecContext(ctx, update, c.Name, c.Address, c.City, c.Pincode, c.Notes, c.UpdatedAt, c.ID); err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return nil
}

// Search finds customers whose name or phone contains the term.
func (s *Service) Search(ctx context.Context, term string, limit int) ([]Customer, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []Customer
	pattern := "%" + term + "%"
	query := s.db.Rebind(`SELECT * FROM customers WHERE name LIKE ? OR phone LIKE ? ORDER BY created_at DESC LIMIT ?`)
	if err := s.db.SelectContext(ctx, &out, query, pattern, pattern, limit); err != nil {
		return nil, fmt.Errorf("failed to search customers: %w", err)
	}
	return out, nil
}
