package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hopespot/rescue-server/internal/engine"
	"github.com/hopespot/rescue-server/internal/models"
	"github.com/hopespot/rescue-server/internal/storage"
)

// failingKV refuses writes, standing in for an unavailable backend.
type failingKV struct{ storage.Memory }

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	return storage.ErrUnavailable
}

func newCaseStore(t *testing.T) (*CaseStore, *storage.Memory) {
	t.Helper()
	kv := storage.NewMemory()
	return NewCaseStore(kv, "hopespot_rescue_requests", zap.NewNop().Sugar()), kv
}

func submission() models.CaseSubmission {
	return models.CaseSubmission{
		HelperName:  "A",
		HelperPhone: "1",
		Location:    "X",
		Notes:       "n",
	}
}

func adminActor() engine.Actor {
	return engine.Actor{Role: engine.RoleAdmin}
}

func rescuerActor(id, name string) engine.Actor {
	return engine.Actor{Role: engine.RoleRescuer, RescuerID: id, DisplayName: name}
}

func TestSubmitForcesPendingAndClearsAssignment(t *testing.T) {
	s, _ := newCaseStore(t)

	before := time.Now()
	c := s.Submit(context.Background(), submission())

	assert.Equal(t, models.StatusPending, c.Status)
	assert.NotEmpty(t, c.ID)
	assert.NotEmpty(t, c.TrackingID)
	assert.Empty(t, c.AssignedRescuer)
	assert.Empty(t, c.RescuerID)
	assert.Empty(t, c.RescuerNotes)
	assert.Equal(t, 1, c.Revision)
	assert.WithinDuration(t, before, c.CreatedAt, 2*time.Second)
}

func TestSubmitPrependsNewestFirst(t *testing.T) {
	s, _ := newCaseStore(t)

	first := s.Submit(context.Background(), submission())
	second := s.Submit(context.Background(), submission())

	all := s.ListAll()
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)
	assert.Greater(t, second.ID, first.ID, "ids are monotonic")
}

func TestApplyTransitionAssignsAndOverwrites(t *testing.T) {
	s, _ := newCaseStore(t)
	c := s.Submit(context.Background(), submission())

	updated, err := s.ApplyTransition(context.Background(), c.ID, models.StatusAssigned, adminActor(), engine.Aux{RescuerID: "R1", RescuerName: "One"}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, updated.Status)
	assert.Equal(t, "R1", updated.RescuerID)
	assert.Equal(t, 2, updated.Revision)

	// Reject back to the pool, then a second assignment overwrites.
	_, err = s.Reject(context.Background(), c.ID, rescuerActor("R1", "One"), nil)
	require.NoError(t, err)

	updated, err = s.ApplyTransition(context.Background(), c.ID, models.StatusAssigned, adminActor(), engine.Aux{RescuerID: "R2", RescuerName: "Two"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "R2", updated.RescuerID)
	assert.Equal(t, "Two", updated.AssignedRescuer)
}

func TestApplyTransitionUnknownCase(t *testing.T) {
	s, _ := newCaseStore(t)
	_, err := s.ApplyTransition(context.Background(), "missing", models.StatusAssigned, adminActor(), engine.Aux{RescuerID: "R1", RescuerName: "One"}, nil)
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestApplyTransitionLeavesUnrelatedFieldsAlone(t *testing.T) {
	s, _ := newCaseStore(t)
	c := s.Submit(context.Background(), submission())

	updated, err := s.ApplyTransition(context.Background(), c.ID, models.StatusAssigned, adminActor(), engine.Aux{RescuerID: "R1", RescuerName: "One"}, nil)
	require.NoError(t, err)

	assert.Equal(t, c.HelperName, updated.HelperName)
	assert.Equal(t, c.HelperPhone, updated.HelperPhone)
	assert.Equal(t, c.Location, updated.Location)
	assert.Equal(t, c.Notes, updated.Notes)
	assert.Equal(t, c.CreatedAt.Unix(), updated.CreatedAt.Unix())
	assert.Equal(t, c.TrackingID, updated.TrackingID)
}

func TestRevisionConflictDetected(t *testing.T) {
	s, _ := newCaseStore(t)
	c := s.Submit(context.Background(), submission())

	stale := c.Revision
	_, err := s.ApplyTransition(context.Background(), c.ID, models.StatusAssigned, adminActor(), engine.Aux{RescuerID: "R1", RescuerName: "One"}, &stale)
	require.NoError(t, err)

	// A second writer holding the old revision loses.
	_, err = s.ApplyTransition(context.Background(), c.ID, models.StatusAssigned, adminActor(), engine.Aux{RescuerID: "R2", RescuerName: "Two"}, &stale)
	assert.ErrorIs(t, err, ErrRevisionConflict)
}

func TestIllegalTransitionSurfacesFromEngine(t *testing.T) {
	s, _ := newCaseStore(t)
	c := s.Submit(context.Background(), submission())

	_, err := s.ApplyTransition(context.Background(), c.ID, models.StatusCompleted, adminActor(), engine.Aux{}, nil)
	assert.ErrorIs(t, err, engine.ErrIllegalTransition)

	// The failed request must not have touched the case.
	got, ok := s.FindByID(c.ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, 1, got.Revision)
}

func TestFullLifecycle(t *testing.T) {
	s, _ := newCaseStore(t)
	ctx := context.Background()
	c := s.Submit(ctx, submission())
	mike := rescuerActor("mike-r1", "Mike Davis")

	_, err := s.ApplyTransition(ctx, c.ID, models.StatusAssigned, mike, engine.Aux{}, nil)
	require.NoError(t, err)
	_, err = s.ApplyTransition(ctx, c.ID, models.StatusOnTheWay, mike, engine.Aux{}, nil)
	require.NoError(t, err)
	_, err = s.ApplyTransition(ctx, c.ID, models.StatusReached, mike, engine.Aux{}, nil)
	require.NoError(t, err)
	done, err := s.ApplyTransition(ctx, c.ID, models.StatusCompleted, mike, engine.Aux{Summary: "ok"}, nil)
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.Equal(t, "ok", done.RescuerNotes)
	assert.Equal(t, 5, done.Revision)
}

func TestClearAllAndReplaceAll(t *testing.T) {
	s, _ := newCaseStore(t)
	ctx := context.Background()
	s.Submit(ctx, submission())
	s.Submit(ctx, submission())

	s.ClearAll(ctx)
	assert.Empty(t, s.ListAll())

	imported := []models.RescueCase{
		{ID: "100", HelperName: "I", Status: models.StatusPending, CreatedAt: time.Now()},
	}
	s.ReplaceAll(ctx, imported)
	got := s.ListAll()
	require.Len(t, got, 1)
	assert.Equal(t, "100", got[0].ID)

	// New ids continue past the imported ones.
	next := s.Submit(ctx, submission())
	assert.Greater(t, next.ID, "100")
}

func TestCasesPersistAndReload(t *testing.T) {
	s, kv := newCaseStore(t)
	c := s.Submit(context.Background(), submission())

	reloaded := NewCaseStore(kv, "hopespot_rescue_requests", zap.NewNop().Sugar())
	require.NoError(t, reloaded.Load(context.Background()))

	got, ok := reloaded.FindByID(c.ID)
	require.True(t, ok)
	assert.Equal(t, c.HelperName, got.HelperName)
}

func TestPersistFailureDegradesToMemoryOnly(t *testing.T) {
	kv := &failingKV{}
	s := NewCaseStore(kv, "hopespot_rescue_requests", zap.NewNop().Sugar())

	// The mutation itself still succeeds.
	c := s.Submit(context.Background(), submission())
	assert.NotEmpty(t, c.ID)
	assert.True(t, s.Degraded())

	// Further mutations keep working in memory.
	s.Submit(context.Background(), submission())
	assert.Len(t, s.ListAll(), 2)
}
