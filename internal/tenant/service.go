// Copyright 2026 The HTPI Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tenant

import (
	"context"
	"fmt"

	"github.com/htpi/tenant-service/internal/audit"
)

// Service provides tenant directory business logic on top of a Repository.
type Service struct {
	repo        Repository
	auditLogger audit.Logger
}

// NewService creates a new tenant service
func NewService(repo Repository, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
	}
}

// CreateTenant creates a new tenant. When features is nil the default
// feature set is applied by the repository.
func (s *Service) CreateTenant(ctx context.Context, name string, features []string) (*Tenant, error) {
	if name == "" {
		return nil, fmt.Errorf("tenant name is required")
	}

	t, err := s.repo.Create(ctx, name, features)
	if err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantCreated,
		TenantID: t.ID,
		Resource: t.Name,
	})

	return t, nil
}

// UpdateTenant applies a partial update. Returns ErrTenantNotFound when the
// id is unknown; the store is left untouched in that case.
func (s *Service) UpdateTenant(ctx context.Context, id string, patch Patch) (*Tenant, error) {
	t, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantUpdated,
		TenantID: t.ID,
		Resource: t.Name,
	})

	return t, nil
}

// GetTenant retrieves a tenant by ID
func (s *Service) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	return s.repo.Get(ctx, id)
}

// ListTenants returns every tenant in the directory, in insertion order.
func (s *Service) ListTenants(ctx context.Context) ([]*Tenant, error) {
	return s.repo.List(ctx)
}
