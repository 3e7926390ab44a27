package stylists

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

func setupTestService(t *testing.T) *Service {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// every sqlite :memory: connection is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, database.Migrate(ctx, db))

	return NewService(db)
}

func TestCreateAndGet(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateStylistRequest{
		Name:    "Meera Nair",
		Phone:   "+919876543210",
		SalonID: "salon-1",
		Level:   "L2",
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meera Nair", got.Name)
	assert.Equal(t, "L2", got.Level)
}

func TestGetMissing(t *testing.T) {
	svc := setupTestService(t)

	_, err := svc.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListScopedToSalon(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateStylistRequest{Name: "A", SalonID: "salon-1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateStylistRequest{Name: "B", SalonID: "salon-1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateStylistRequest{Name: "C", SalonID: "salon-2"})
	require.NoError(t, err)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	scoped, err := svc.List(ctx, "salon-1")
	require.NoError(t, err)
	assert.Len(t, scoped, 2)
}

func TestUpdatePartial(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateStylistRequest{Name: "Meera Nair", Level: "L1"})
	require.NoError(t, err)

	level := "L3"
	inactive := false
	updated, err := svc.Update(ctx, created.ID, UpdateStylistRequest{Level: &level, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "L3", updated.Level)
	assert.False(t, updated.IsActive)
	// untouched fields keep their values
	assert.Equal(t, "Meera Nair", updated.Name)
}

func TestDelete(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateStylistRequest{Name: "Meera Nair"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)
}
