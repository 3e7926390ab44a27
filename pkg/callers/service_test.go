package callers

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonlink/backend/pkg/auth"
	"github.com/salonlink/backend/pkg/database"
	"github.com/salonlink/backend/pkg/models"
)

func setupTestService(t *testing.T) (*Service, *sqlx.DB) {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// every sqlite :memory: connection is a separate database
	db.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(context.Background(), db))
	return NewService(db), db
}

func TestCreateGeneratesPasswordOnce(t *testing.T) {
	svc, db := setupTestService(t)

	created, err := svc.Create(context.Background(), models.CreateUserRequest{
		Name:  "Asha",
		Email: "Asha@SalonLink.in",
		Phone: "+919876543210",
	})
	require.NoError(t, err)

	assert.Len(t, created.GeneratedPassword, 12)
	assert.Equal(t, "asha@salonlink.in", created.Email)
	assert.Equal(t, models.RoleLeadCaller, created.Role)
	assert.True(t, created.IsActive)

	var hash string
	require.NoError(t, db.Get(&hash, `SELECT password_hash FROM users WHERE id = ?`, created.ID))
	assert.True(t, auth.CheckPassword(hash, created.GeneratedPassword))

	// listing never exposes the password again
	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestCreateWithExplicitPassword(t *testing.T) {
	svc, db := setupTestService(t)

	created, err := svc.Create(context.Background(), models.CreateUserRequest{
		Name:     "Asha",
		Email:    "asha@salonlink.in",
		Phone:    "+919876543210",
		Password: "chosen-by-admin",
	})
	require.NoError(t, err)
	assert.Empty(t, created.GeneratedPassword)

	var hash string
	require.NoError(t, db.Get(&hash, `SELECT password_hash FROM users WHERE id = ?`, created.ID))
	assert.True(t, auth.CheckPassword(hash, "chosen-by-admin"))
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, models.CreateUserRequest{Name: "Asha", Email: "asha@salonlink.in", Phone: "1"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, models.CreateUserRequest{Name: "Other", Email: "ASHA@salonlink.in", Phone: "2"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSetStatus(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CreateUserRequest{Name: "Asha", Email: "asha@salonlink.in", Phone: "1"})
	require.NoError(t, err)

	updated, err := svc.SetStatus(ctx, created.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, err = svc.SetStatus(ctx, "missing", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResetPassword(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CreateUserRequest{Name: "Asha", Email: "asha@salonlink.in", Phone: "1"})
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, created.ID, "new-password-123"))

	var hash string
	require.NoError(t, db.Get(&hash, `SELECT password_hash FROM users WHERE id = ?`, created.ID))
	assert.True(t, auth.CheckPassword(hash, "new-password-123"))
	assert.False(t, auth.CheckPassword(hash, created.GeneratedPassword))
}

func TestDeleteOnlyTouchesCallers(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CreateUserRequest{Name: "Asha", Email: "asha@salonlink.in", Phone: "1"})
	require.NoError(t, err)

	// an admin account with a different role is out of reach
	_, err = db.Exec(`INSERT INTO users (id, name, email, phone, password_hash, role, is_active, created_at, updated_at)
		VALUES ('admin-1', 'Boss', 'boss@salonlink.in', '', 'x', ?, 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`, models.RoleAdmin)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "admin-1"), ErrNotFound)
	require.NoError(t, svc.Delete(ctx, created.ID))
}
