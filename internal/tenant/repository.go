package tenant

import (
	"context"
	"errors"
)

var (
	ErrTenantNotFound = errors.New("tenant not found")
)

// Repository defines the interface for tenant storage. Create allocates the
// next sequential id; Update performs an atomic read-merge-write so two
// concurrent patches never lose each other's keys.
type Repository interface {
	Create(ctx context.Context, name string, features []string) (*Tenant, error)
	Update(ctx context.Context, id string, patch Patch) (*Tenant, error)
	Get(ctx context.Context, id string) (*Tenant, error)
	List(ctx context.Context) ([]*Tenant, error)
	Seed(ctx context.Context, tenants []*Tenant) error
}
