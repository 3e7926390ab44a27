package salons

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

func TestCreateStartsAtApproach(t *testing.T) {
	svc := setupTestService(t)

	salon, err := svc.Create(context.Background(), CreateSalonRequest{Name: "Glow Studio", City: "Mumbai"})
	require.NoError(t, err)

	assert.Equal(t, StageApproach, salon.Stage)
	assert.Empty(t, salon.Checklist)
	assert.True(t, salon.IsActive)
}

func TestSetChecklistRejectsForeignItems(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	salon, err := svc.Create(ctx, CreateSalonRequest{Name: "Glow Studio"})
	require.NoError(t, err)

	// stylists_added belongs to OWNER_READY, not APPROACH
	_, err = svc.SetChecklist(ctx, salon.ID, map[string]bool{"stylists_added": true})
	assert.ErrorIs(t, err, ErrUnknownChecklistItem)
}

func TestAdvanceStageRequiresFullChecklist(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	salon, err := svc.Create(ctx, CreateSalonRequest{Name: "Glow Studio"})
	require.NoError(t, err)

	_, err = svc.AdvanceStage(ctx, salon.ID)
	assert.ErrorIs(t, err, ErrChecklistIncomplete)

	_, err = svc.SetChecklist(ctx, salon.ID, map[string]bool{
		"address_filled":       true,
		"owner_details_filled": true,
	})
	require.NoError(t, err)

	_, err = svc.AdvanceStage(ctx, salon.ID)
	assert.ErrorIs(t, err, ErrChecklistIncomplete)

	_, err = svc.SetChecklist(ctx, salon.ID, map[string]bool{"services_filled": true})
	require.NoError(t, err)

	advanced, err := svc.AdvanceStage(ctx, salon.ID)
	require.NoError(t, err)
	assert.Equal(t, StageOwnerReady, advanced.Stage)
	assert.Empty(t, advanced.Checklist, "checklist resets for the new stage")
}

func TestAdvanceThroughPipeline(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	salon, err := svc.Create(ctx, CreateSalonRequest{Name: "Glow Studio"})
	require.NoError(t, err)

	for _, stage := range []string{StageApproach, StageOwnerReady, StageUnderActivation} {
		items := map[string]bool{}
		for _, key := range StageChecklist(stage) {
			items[key] = true
		}
		_, err = svc.SetChecklist(ctx, salon.ID, items)
		require.NoError(t, err)
		_, err = svc.AdvanceStage(ctx, salon.ID)
		require.NoError(t, err)
	}

	current, err := svc.GetByID(ctx, salon.ID)
	require.NoError(t, err)
	assert.Equal(t, StageActivated, current.Stage)

	// activated is terminal for forward movement
	_, err = svc.AdvanceStage(ctx, salon.ID)
	assert.ErrorIs(t, err, ErrStageTerminal)
}

func TestUpdateStageOnlyAllowsClosing(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	salon, err := svc.Create(ctx, CreateSalonRequest{Name: "Glow Studio"})
	require.NoError(t, err)

	stage := StageActivated
	_, err = svc.Update(ctx, salon.ID, UpdateSalonRequest{Stage: &stage})
	assert.Error(t, err)

	closed := StageClosed
	updated, err := svc.Update(ctx, salon.ID, UpdateSalonRequest{Stage: &closed})
	require.NoError(t, err)
	assert.Equal(t, StageClosed, updated.Stage)
}

func TestListFilterByStage(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateSalonRequest{Name: "Approach Salon", City: "Mumbai"})
	require.NoError(t, err)

	other, err := svc.Create(ctx, CreateSalonRequest{Name: "Closing Salon", City: "Pune"})
	require.NoError(t, err)
	closed := StageClosed
	_, err = svc.Update(ctx, other.ID, UpdateSalonRequest{Stage: &closed})
	require.NoError(t, err)

	approach, err := svc.List(ctx, StageApproach, "")
	require.NoError(t, err)
	require.Len(t, approach, 1)
	assert.Equal(t, "Approach Salon", approach[0].Name)

	pune, err := svc.List(ctx, "", "Pune")
	require.NoError(t, err)
	require.Len(t, pune, 1)
	assert.Equal(t, "Closing Salon", pune[0].Name)
}

func TestDelete(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	salon, err := svc.Create(ctx, CreateSalonRequest{Name: "Glow Studio"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, salon.ID))
	assert.ErrorIs(t, svc.Delete(ctx, salon.ID), ErrNotFound)

	_, err = svc.GetByID(ctx, salon.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
