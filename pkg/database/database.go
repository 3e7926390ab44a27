package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Client holds the database handle shared by all services.
type Client struct {
	DB *sqlx.DB
}

// NewClient opens a Postgres connection, applies the schema and returns the
// client. URLs starting with sqlite:// open an in-process SQLite database
// instead (used by tests and local tooling).
func NewClient(databaseURL string) (*Client, error) {
	driver := "postgres"
	dsn := databaseURL
	if rest, ok := strings.CutPrefix(databaseURL, "sqlite://"); ok {
		driver = "sqlite3"
		dsn = rest
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed opening database connection: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed pinging database: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed applying schema: %w", err)
	}

	return &Client{DB: db}, nil
}

// Migrate applies the embedded schema. Every statement is idempotent
// (IF NOT EXISTS) so running it again on a populated database is safe.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.DB.Close()
}

// Ping checks if the database is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}
