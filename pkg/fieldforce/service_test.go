package fieldforce

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonlink/backend/pkg/database"
	"github.com/salonlink/backend/pkg/models"
	"github.com/salonlink/backend/pkg/salons"
)

func setupTestService(t *testing.T) (*Service, *salons.Service) {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// every sqlite :memory: connection is a separate database
	db.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(context.Background(), db))

	salonSvc := salons.NewService(db)
	return NewService(db, salonSvc), salonSvc
}

func TestCreateAgent(t *testing.T) {
	svc, _ := setupTestService(t)

	created, err := svc.Create(context.Background(), models.CreateUserRequest{
		Name:  "Ravi",
		Email: "ravi@salonlink.in",
		Phone: "+919876543210",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleFieldAgent, created.Role)
	assert.Len(t, created.GeneratedPassword, 12)

	_, err = svc.Create(context.Background(), models.CreateUserRequest{
		Name:  "Dup",
		Email: "ravi@salonlink.in",
		Phone: "1",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAssignAndListSalons(t *testing.T) {
	svc, salonSvc := setupTestService(t)
	ctx := context.Background()

	agent, err := svc.Create(ctx, models.CreateUserRequest{Name: "Ravi", Email: "ravi@salonlink.in", Phone: "1"})
	require.NoError(t, err)

	s1, err := salonSvc.Create(ctx, salons.CreateSalonRequest{Name: "Glow Studio", City: "Mumbai"})
	require.NoError(t, err)
	s2, err := salonSvc.Create(ctx, salons.CreateSalonRequest{Name: "Shine Salon", City: "Pune"})
	require.NoError(t, err)

	require.NoError(t, svc.AssignSalon(ctx, agent.ID, s1.ID))
	require.NoError(t, svc.AssignSalon(ctx, agent.ID, s2.ID))
	// assigning twice is a no-op
	require.NoError(t, svc.AssignSalon(ctx, agent.ID, s1.ID))

	route, err := svc.SalonsForAgent(ctx, agent.ID)
	require.NoError(t, err)
	assert.Len(t, route, 2)

	require.NoError(t, svc.UnassignSalon(ctx, agent.ID, s1.ID))

	route, err = svc.SalonsForAgent(ctx, agent.ID)
	require.NoError(t, err)
	require.Len(t, route, 1)
	assert.Equal(t, "Shine Salon", route[0].Name)
}

func TestAssignValidation(t *testing.T) {
	svc, salonSvc := setupTestService(t)
	ctx := context.Background()

	salon, err := salonSvc.Create(ctx, salons.CreateSalonRequest{Name: "Glow Studio"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.AssignSalon(ctx, "missing-agent", salon.ID), ErrNotFound)

	agent, err := svc.Create(ctx, models.CreateUserRequest{Name: "Ravi", Email: "ravi@salonlink.in", Phone: "1"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.AssignSalon(ctx, agent.ID, "missing-salon"), ErrSalonNotFound)
}

func TestSetStatus(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	agent, err := svc.Create(ctx, models.CreateUserRequest{Name: "Ravi", Email: "ravi@salonlink.in", Phone: "1"})
	require.NoError(t, err)

	require.NoError(t, svc.SetStatus(ctx, agent.ID, false))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsActive)

	assert.ErrorIs(t, svc.SetStatus(ctx, "missing", true), ErrNotFound)
}
