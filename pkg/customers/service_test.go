package customers

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonlink/backend/pkg/database"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestService(t *testing.T) (*Service, *sqlx.DB) {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// every sqlite :memory: connection is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, database.Migrate(ctx, db))

	return NewService(db), db
}

func str(s string) *string { return &s }

func TestUpsertByPhoneReusesExisting(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	first, err := svc.UpsertByPhone(ctx, db, "Asha Verma", "+919876543210")
	require.NoError(t, err)

	// A later lead from the same number maps to the same customer even
	// when the submitted name differs.
	second, err := svc.UpsertByPhone(ctx, db, "A. Verma", "+919876543210")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Asha Verma", second.Name)
}

func TestGetByPhone(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	created, err := svc.UpsertByPhone(ctx, db, "Asha Verma", "+919876543210")
	require.NoError(t, err)

	got, err := svc.GetByPhone(ctx, "+919876543210")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetByPhone(ctx, "+910000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateDropsEmptyStrings(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	created, err := svc.UpsertByPhone(ctx, db, "Asha Verma", "+919876543210")
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, db, created.ID, UpdateFields{
		Address: str("12 MG Road"),
		City:    str("Bengaluru"),
	}))
	// blank form fields never erase stored contact details
	require.NoError(t, svc.Update(ctx, db, created.ID, UpdateFields{
		Address: str(""),
		Notes:   str("prefers evening calls"),
	}))

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "12 MG Road", got.Address)
	assert.Equal(t, "Bengaluru", got.City)
	assert.Equal(t, "prefers evening calls", got.Notes)
}

func TestUpdateMissingCustomer(t *testing.T) {
	svc, db := setupTestService(t)

	err := svc.Update(context.Background(), db, "missing", UpdateFields{Name: str("X")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchByNameOrPhone(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	_, err := svc.UpsertByPhone(ctx, db, "Asha Verma", "+919876543210")
	require.NoError(t, err)
	_, err = svc.UpsertByPhone(ctx, db, "Rohan Gupta", "+919123456780")
	require.NoError(t, err)

	byName, err := svc.Search(ctx, "Asha", 10)
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Asha Verma", byName[0].Name)

	byPhone, err := svc.Search(ctx, "912345", 10)
	require.NoError(t, err)
	require.Len(t, byPhone, 1)
	assert.Equal(t, "Rohan Gupta", byPhone[0].Name)

	none, err := svc.Search(ctx, "zzz", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
