// Package products holds the small catalog shown in the lead update form.
package products

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no product matches.
var ErrNotFound = errors.New("product not found")

// Option is one configurable axis of a product, e.g. shade or size.
type Option struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Product is a catalog entry a lead can be interested in.
type Product struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Options   []Option  `json:"options"`
	CreatedAt time.Time `json:"createdAt"`
}

type productRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Options   string    `db:"options"`
	CreatedAt time.Time `db:"created_at"`
}

// Service handles product catalog operations.
type Service struct {
	db *sqlx.DB
}

// NewService creates a new product service.
func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// Create adds a product to the catalog.
func (s *Service) Create(ctx context.Context, title string, options []Option) (*Product, error) {
	if options == nil {
		options = []Option{}
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}

	p := Product{
		ID:        uuid.NewString(),
		Title:     title,
		Options:   options,
		CreatedAt: time.Now().UTC(),
	}
	query := s.db.Rebind(`INSERT INTO products (id, title, options, created_at) VALUES (?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query, p.ID, p.Title, string(raw), p.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &p, nil
}

// GetByID retrieves a product by ID.
func (s *Service) GetByID(ctx context.Context, id string) (*Product, error) {
	var row productRow
	query := s.db.Rebind(`SELECT * FROM products WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return row.toProduct()
}

// List returns the catalog newest first. A non-empty search term matches
// titles case-insensitively; limit <= 0 returns everything.
func (s *Service) List(ctx context.Context, search string, limit int) ([]Product, error) {
	query := `SELECT * FROM products`
	args := []any{}
	if search != "" {
		query += ` WHERE LOWER(title) LIKE ?`
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []productRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	out := make([]Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.toProduct()
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// Delete removes a product from the catalog.
func (s *Service) Delete(ctx context.Context, id string) error {
	query := s.db.Rebind(`DELETE FROM products WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r productRow) toProduct() (*Product, error) {
	var options []Option
	if err := json.Unmarshal([]byte(r.Options), &options); err != nil {
		return nil, fmt.Errorf("failed to decode product options: %w", err)
	}
	return &Product{
		ID:        r.ID,
		Title:     r.Title,
		Options:   options,
		CreatedAt: r.CreatedAt,
	}, nil
}
