package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/htpi/tenant-service/internal/tenant"
)

func strPtr(s string) *string { return &s }

// TestPurpose: Validates sequential id allocation.
// Scope: Unit Test
// Expected: Every created tenant gets a unique tenant-NNN id strictly
// following the previous maximum.
func TestMemory_Create_SequentialIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		tn, err := s.Create(ctx, fmt.Sprintf("Clinic %d", i), nil)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("tenant-%03d", i), tn.ID)
	}
}

func TestMemory_Create_DefaultFeatures(t *testing.T) {
	s := New()
	ctx := context.Background()

	tn, err := s.Create(ctx, "Acme Clinic", nil)
	require.NoError(t, err)

	assert.Equal(t, tenant.DefaultFeatures, tn.Settings.Features)
	assert.Equal(t, tenant.StatusActive, tn.Status)
	assert.NotNil(t, tn.Settings.ClaimAccounts)
	assert.Empty(t, tn.Settings.ClaimAccounts)
	assert.False(t, tn.CreatedAt.IsZero())
	assert.Equal(t, time.UTC, tn.CreatedAt.Location())
}

func TestMemory_Create_ExplicitFeatures(t *testing.T) {
	s := New()

	tn, err := s.Create(context.Background(), "Acme Clinic", []string{"claims"})
	require.NoError(t, err)

	assert.Equal(t, []string{"claims"}, tn.Settings.Features)
}

// TestPurpose: Validates that updating a missing tenant does not mutate
// the store.
// Scope: Unit Test
// Expected: ErrTenantNotFound, and the directory contents are unchanged.
func TestMemory_Update_NotFound(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Create(ctx, "Acme Clinic", nil)
	require.NoError(t, err)

	_, err = s.Update(ctx, "tenant-999", tenant.Patch{Name: strPtr("Renamed")})
	assert.ErrorIs(t, err, tenant.ErrTenantNotFound)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Acme Clinic", all[0].Name)
}

func TestMemory_Update_MergesSettings(t *testing.T) {
	s := New()
	ctx := context.Background()

	tn, err := s.Create(ctx, "Acme Clinic", nil)
	require.NoError(t, err)

	accounts := []tenant.ClaimAccount{
		{ID: "claimmd-001", Name: "Primary Account", APIKey: "encrypted_key_here"},
	}
	_, err = s.Update(ctx, tn.ID, tenant.Patch{
		Settings: &tenant.SettingsPatch{ClaimAccounts: &accounts},
	})
	require.NoError(t, err)

	features := []string{"patients"}
	updated, err := s.Update(ctx, tn.ID, tenant.Patch{
		Settings: &tenant.SettingsPatch{Features: &features},
	})
	require.NoError(t, err)

	assert.Equal(t, features, updated.Settings.Features)
	assert.Equal(t, accounts, updated.Settings.ClaimAccounts,
		"claim accounts must survive a features-only patch")
}

func TestMemory_Get_RoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.Create(ctx, "Acme Clinic", nil)
	require.NoError(t, err)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = s.Get(ctx, "tenant-999")
	assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
}

func TestMemory_List_InsertionOrder(t *testing.T) {
	s := New()
	ctx := context.Background()

	names := []string{"First", "Second", "Third"}
	for _, n := range names {
		_, err := s.Create(ctx, n, nil)
		require.NoError(t, err)
	}

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, n := range names {
		assert.Equal(t, n, all[i].Name)
	}
}

// TestPurpose: Validates that seeding advances the sequence counter.
// Scope: Unit Test
// Expected: After seeding tenant-007, the next created id is tenant-008.
func TestMemory_Seed_AdvancesSequence(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.Seed(ctx, []*tenant.Tenant{
		{ID: "tenant-002", Name: "Springfield Clinic", Status: tenant.StatusActive},
		{ID: "tenant-007", Name: "Mercy General Hospital", Status: tenant.StatusActive},
	})
	require.NoError(t, err)

	tn, err := s.Create(ctx, "New Clinic", nil)
	require.NoError(t, err)
	assert.Equal(t, "tenant-008", tn.ID)
}

func TestMemory_Seed_RejectsDuplicates(t *testing.T) {
	s := New()
	ctx := context.Background()

	seed := []*tenant.Tenant{{ID: "tenant-001", Name: "A"}}
	require.NoError(t, s.Seed(ctx, seed))
	assert.Error(t, s.Seed(ctx, seed))
}

func TestMemory_ReturnedRecordsDoNotAliasStore(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.Create(ctx, "Acme Clinic", nil)
	require.NoError(t, err)

	created.Settings.Features[0] = "mutated"

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, tenant.DefaultFeatures[0], got.Settings.Features[0])
}

func TestMemory_ConcurrentCreatesAllocateUniqueIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	ids := make(chan string, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tn, err := s.Create(ctx, "Clinic", nil)
			if err == nil {
				ids <- tn.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}
