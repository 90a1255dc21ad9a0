package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/htpi/tenant-service/internal/audit"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, name string, features []string) (*Tenant, error) {
	args := m.Called(ctx, name, features)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Tenant), args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, id string, patch Patch) (*Tenant, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Tenant), args.Error(1)
}

func (m *mockRepo) Get(ctx context.Context, id string) (*Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Tenant), args.Error(1)
}

func (m *mockRepo) List(ctx context.Context) ([]*Tenant, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*Tenant), args.Error(1)
}

func (m *mockRepo) Seed(ctx context.Context, tenants []*Tenant) error {
	args := m.Called(ctx, tenants)
	return args.Error(0)
}

type mockAudit struct {
	mock.Mock
}

func (m *mockAudit) Log(ctx context.Context, event audit.Event) {
	m.Called(ctx, event)
}

// TestPurpose: Validates that tenant creation delegates id allocation to
// the repository and records an audit event.
// Scope: Unit Test
// Expected: The repository's record is returned unchanged and a
// tenant_created event is logged.
func TestTenant_Service_CreateTenant(t *testing.T) {
	repo := new(mockRepo)
	auditLogger := new(mockAudit)
	service := NewService(repo, auditLogger)

	ctx := context.Background()
	created := &Tenant{ID: "tenant-003", Name: "Acme Clinic", Status: StatusActive}

	repo.On("Create", ctx, "Acme Clinic", []string(nil)).Return(created, nil)
	auditLogger.On("Log", ctx, mock.MatchedBy(func(e audit.Event) bool {
		return e.Type == audit.TypeTenantCreated && e.TenantID == "tenant-003"
	})).Return()

	got, err := service.CreateTenant(ctx, "Acme Clinic", nil)

	assert.NoError(t, err)
	assert.Equal(t, created, got)

	repo.AssertExpectations(t)
	auditLogger.AssertExpectations(t)
}

func TestTenant_Service_CreateTenant_RequiresName(t *testing.T) {
	repo := new(mockRepo)
	auditLogger := new(mockAudit)
	service := NewService(repo, auditLogger)

	_, err := service.CreateTenant(context.Background(), "", nil)

	assert.Error(t, err)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

// TestPurpose: Validates that update surfaces ErrTenantNotFound unchanged
// and skips the audit log on failure.
// Scope: Unit Test
// Expected: The sentinel error propagates so the transport layer can map
// it to the structured failure reply.
func TestTenant_Service_UpdateTenant_NotFound(t *testing.T) {
	repo := new(mockRepo)
	auditLogger := new(mockAudit)
	service := NewService(repo, auditLogger)

	ctx := context.Background()
	repo.On("Update", ctx, "tenant-999", Patch{}).Return(nil, ErrTenantNotFound)

	_, err := service.UpdateTenant(ctx, "tenant-999", Patch{})

	assert.ErrorIs(t, err, ErrTenantNotFound)
	auditLogger.AssertNotCalled(t, "Log", mock.Anything, mock.Anything)
}
