package commissionrules

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salonlink/backend/pkg/database"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// every sqlite :memory: connection is a separate database
	db.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(context.Background(), db))
	return NewService(db)
}

func f(v float64) *float64 { return &v }

func TestCreateAndGet(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	rule, err := svc.Create(ctx, CreateRuleRequest{
		Name:           "Standard 10%",
		Type:           TypePercentage,
		Value:          10,
		MinOrderAmount: 500,
		MaxCommission:  f(300),
		AllowedLevels:  []string{"gold", "platinum"},
	})
	require.NoError(t, err)
	assert.True(t, rule.IsActive)

	loaded, err := svc.GetByID(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, "Standard 10%", loaded.Name)
	assert.Equal(t, []string{"gold", "platinum"}, loaded.AllowedLevels)
	require.NotNil(t, loaded.MaxCommission)
	assert.Equal(t, 300.0, *loaded.MaxCommission)
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc := setupTestService(t)

	_, err := svc.Create(context.Background(), CreateRuleRequest{Name: "bad", Type: "tiered", Value: 5})
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestCommissionComputation(t *testing.T) {
	percentage := Rule{Type: TypePercentage, Value: 10, MaxCommission: f(300)}
	assert.Equal(t, 100.0, percentage.Commission(1000))
	assert.Equal(t, 300.0, percentage.Commission(10000), "capped at max commission")

	fixed := Rule{Type: TypeFixed, Value: 150}
	assert.Equal(t, 150.0, fixed.Commission(1000))
	assert.Equal(t, 150.0, fixed.Commission(50000))
}

func TestMatchPicksHighestPriority(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRuleRequest{Name: "Base 5%", Type: TypePercentage, Value: 5, Priority: 1})
	require.NoError(t, err)
	top, err := svc.Create(ctx, CreateRuleRequest{Name: "Gold 12%", Type: TypePercentage, Value: 12, AllowedLevels: []string{"gold"}, Priority: 10})
	require.NoError(t, err)

	matched, err := svc.Match(ctx, Order{Amount: 1000, Level: "gold"})
	require.NoError(t, err)
	assert.Equal(t, top.ID, matched.ID)

	// silver does not hit the gold rule, falls through to the base rule
	matched, err = svc.Match(ctx, Order{Amount: 1000, Level: "silver"})
	require.NoError(t, err)
	assert.Equal(t, "Base 5%", matched.Name)
}

func TestMatchRespectsConstraints(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	rule, err := svc.Create(ctx, CreateRuleRequest{
		Name:           "Big orders only",
		Type:           TypeFixed,
		Value:          200,
		MinOrderAmount: 2000,
		ProductIDs:     []string{"prod-1"},
	})
	require.NoError(t, err)

	_, err = svc.Match(ctx, Order{Amount: 1000, ProductIDs: []string{"prod-1"}})
	assert.ErrorIs(t, err, ErrNoRuleMatches)

	_, err = svc.Match(ctx, Order{Amount: 3000, ProductIDs: []string{"prod-2"}})
	assert.ErrorIs(t, err, ErrNoRuleMatches)

	matched, err := svc.Match(ctx, Order{Amount: 3000, ProductIDs: []string{"prod-1"}})
	require.NoError(t, err)
	assert.Equal(t, rule.ID, matched.ID)

	// deactivated rules never match
	inactive := false
	_, err = svc.Update(ctx, rule.ID, UpdateRuleRequest{IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.Match(ctx, Order{Amount: 3000, ProductIDs: []string{"prod-1"}})
	assert.ErrorIs(t, err, ErrNoRuleMatches)
}

func TestUpdateAndDelete(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	rule, err := svc.Create(ctx, CreateRuleRequest{Name: "Base", Type: TypePercentage, Value: 5})
	require.NoError(t, err)

	newValue := 7.5
	updated, err := svc.Update(ctx, rule.ID, UpdateRuleRequest{Value: &newValue})
	require.NoError(t, err)
	assert.Equal(t, 7.5, updated.Value)

	require.NoError(t, svc.Delete(ctx, rule.ID))
	assert.ErrorIs(t, svc.Delete(ctx, rule.ID), ErrNotFound)
}
