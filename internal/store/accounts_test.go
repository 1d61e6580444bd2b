package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hopespot/rescue-server/internal/models"
	"github.com/hopespot/rescue-server/internal/storage"
)

func newAccountStore(t *testing.T) (*AccountStore, *storage.Memory) {
	t.Helper()
	kv := storage.NewMemory()
	return NewAccountStore(kv, "hopespot_rescuers", zap.NewNop().Sugar()), kv
}

func provision(id, email string) models.AccountProvision {
	return models.AccountProvision{
		ID:       id,
		Email:    email,
		Password: "rescue123",
		Name:     "Test Rescuer",
		Phone:    "555-0100",
	}
}

func TestProvisionStoresLowercasedIdentity(t *testing.T) {
	s, _ := newAccountStore(t)

	account, err := s.Provision(context.Background(), provision("Mike-R1", "Mike.Davis@Example.COM"))
	require.NoError(t, err)

	assert.Equal(t, "mike-r1", account.ID)
	assert.Equal(t, "mike.davis@example.com", account.Email)
	assert.NotEqual(t, "rescue123", account.PasswordHash)
}

func TestProfileCompleteSurfacesInPublicProjection(t *testing.T) {
	s, _ := newAccountStore(t)

	withAddress := provision("mike-r1", "mike@example.com")
	withAddress.Address = "12 Harbor Road"
	account, err := s.Provision(context.Background(), withAddress)
	require.NoError(t, err)
	assert.True(t, account.ProfileComplete)
	assert.True(t, account.Public().ProfileComplete)

	account, err = s.Provision(context.Background(), provision("sarah-r2", "sarah@example.com"))
	require.NoError(t, err)
	assert.False(t, account.Public().ProfileComplete)
}

func TestProvisionRejectsBadSlug(t *testing.T) {
	s, _ := newAccountStore(t)

	for _, id := range []string{"mike", "r1-mike", "mike-x1", "mike-r", "mike r1", "123-r1"} {
		_, err := s.Provision(context.Background(), provision(id, "a@b.test"))
		assert.ErrorIs(t, err, ErrInvalidIDFormat, "id %q", id)
	}
	assert.Empty(t, s.ListAll())
}

func TestDuplicateEmailIsCaseInsensitive(t *testing.T) {
	s, _ := newAccountStore(t)

	_, err := s.Provision(context.Background(), provision("mike-r1", "mike@example.com"))
	require.NoError(t, err)

	_, err = s.Provision(context.Background(), provision("sarah-r2", "MIKE@EXAMPLE.COM"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Len(t, s.ListAll(), 1)
}

func TestDuplicateIDIsCaseInsensitive(t *testing.T) {
	s, _ := newAccountStore(t)

	_, err := s.Provision(context.Background(), provision("mike-r1", "mike@example.com"))
	require.NoError(t, err)

	_, err = s.Provision(context.Background(), provision("MIKE-R1", "other@example.com"))
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Len(t, s.ListAll(), 1)
}

func TestRegisterGeneratesOpaqueID(t *testing.T) {
	s, _ := newAccountStore(t)

	account, err := s.Register(context.Background(), models.AccountRegistration{
		Email:    "New.Rescuer@Example.com",
		Password: "rescue123",
		Name:     "New Rescuer",
		Phone:    "555-0101",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "new.rescuer@example.com", account.Email)

	_, err = s.Register(context.Background(), models.AccountRegistration{
		Email:    "new.rescuer@example.com",
		Password: "other",
		Name:     "Imposter",
		Phone:    "555-0102",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestFindByCredentials(t *testing.T) {
	s, _ := newAccountStore(t)

	_, err := s.Provision(context.Background(), provision("mike-r1", "mike@example.com"))
	require.NoError(t, err)

	account, err := s.FindByCredentials("MIKE@example.com", "rescue123")
	require.NoError(t, err)
	assert.Equal(t, "mike-r1", account.ID)

	// One error for both failure modes.
	_, err = s.FindByCredentials("mike@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.FindByCredentials("nobody@example.com", "rescue123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSeedOnlyOnEmptyRoster(t *testing.T) {
	s, _ := newAccountStore(t)

	defaults := []SeedDefault{
		{ID: "mike-r1", Email: "mike@x.test", Password: "rescue123", Name: "Mike Davis", Phone: "1"},
	}
	require.NoError(t, s.Seed(context.Background(), defaults))
	require.Len(t, s.ListAll(), 1)

	// A second seed against a non-empty roster is a no-op.
	require.NoError(t, s.Seed(context.Background(), []SeedDefault{
		{ID: "sarah-r2", Email: "sarah@x.test", Password: "rescue123", Name: "Sarah Williams", Phone: "2"},
	}))
	assert.Len(t, s.ListAll(), 1)
}

func TestAccountsPersistAndReload(t *testing.T) {
	s, kv := newAccountStore(t)

	_, err := s.Provision(context.Background(), provision("mike-r1", "mike@example.com"))
	require.NoError(t, err)

	reloaded := NewAccountStore(kv, "hopespot_rescuers", zap.NewNop().Sugar())
	require.NoError(t, reloaded.Load(context.Background()))

	got := reloaded.ListAll()
	require.Len(t, got, 1)
	assert.Equal(t, "mike-r1", got[0].ID)

	account, err := reloaded.FindByCredentials("mike@example.com", "rescue123")
	require.NoError(t, err)
	assert.Equal(t, "Test Rescuer", account.Name)
}
