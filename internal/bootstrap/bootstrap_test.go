package bootstrap_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/htpi/tenant-service/internal/access"
	"github.com/htpi/tenant-service/internal/audit"
	"github.com/htpi/tenant-service/internal/bootstrap"
	"github.com/htpi/tenant-service/internal/store/memory"
)

const sampleDocument = `{
  "tenants": [
    {
      "id": "tenant-001",
      "name": "Mercy General Hospital",
      "status": "active",
      "settings": {
        "claim_accounts": [
          {"id": "claimmd-001", "name": "Primary Account", "api_key": "encrypted_key_here"}
        ],
        "features": ["patients", "claims", "insurance", "encounters"]
      },
      "created_at": "2024-01-01T00:00:00Z"
    },
    {
      "id": "tenant-002",
      "name": "Springfield Clinic",
      "status": "active",
      "settings": {
        "claim_accounts": [],
        "features": ["patients", "claims", "insurance"]
      },
      "created_at": "2024-01-15T00:00:00Z"
    }
  ],
  "grants": {
    "user-cust-001": ["tenant-001", "tenant-002"],
    "user-cust-002": ["tenant-001"],
    "user-admin-001": "*"
  }
}`

func writeDocument(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bootstrap.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDocument), 0o600))
	return path
}

func TestBootstrap_LoadEmptyPath(t *testing.T) {
	doc, err := bootstrap.Load("")
	require.NoError(t, err)
	assert.Empty(t, doc.Tenants)
	assert.Empty(t, doc.Grants)
}

func TestBootstrap_LoadMissingFile(t *testing.T) {
	_, err := bootstrap.Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

// TestPurpose: Validates startup seeding of the directory and the grants.
// Scope: Unit Test
// Expected: Seeded tenants are listable in document order, grants resolve
// (wildcard included), and the next allocated id follows the seeded max.
func TestBootstrap_Apply(t *testing.T) {
	doc, err := bootstrap.Load(writeDocument(t))
	require.NoError(t, err)

	store := memory.New()
	idx := access.NewIndex(store)
	ctx := context.Background()

	require.NoError(t, bootstrap.Apply(ctx, doc, store, idx, audit.NewSlogLogger()))

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "tenant-001", all[0].ID)
	assert.Equal(t, "Mercy General Hospital", all[0].Name)
	assert.Equal(t, "encrypted_key_here", all[0].Settings.ClaimAccounts[0].APIKey,
		"api keys pass through bootstrap unchanged")

	assert.True(t, idx.HasAccess("user-admin-001", "tenant-999"))
	assert.True(t, idx.HasAccess("user-cust-002", "tenant-001"))
	assert.False(t, idx.HasAccess("user-cust-002", "tenant-002"))

	tn, err := store.Create(ctx, "New Clinic", nil)
	require.NoError(t, err)
	assert.Equal(t, "tenant-003", tn.ID)
}
