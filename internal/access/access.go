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

package access

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/htpi/tenant-service/internal/tenant"
)

// Wildcard is the grant sentinel meaning "all tenants".
const Wildcard = "*"

// Grant is the set of tenant ids a user may reach, or the wildcard. In the
// bootstrap document it is either the string "*" or an array of ids.
type Grant struct {
	wildcard bool
	tenants  map[string]struct{}
}

// NewGrant builds an explicit grant over the given tenant ids.
func NewGrant(tenantIDs ...string) Grant {
	g := Grant{tenants: make(map[string]struct{}, len(tenantIDs))}
	for _, id := range tenantIDs {
		g.tenants[id] = struct{}{}
	}
	return g
}

// NewWildcardGrant builds the all-tenants grant.
func NewWildcardGrant() Grant {
	return Grant{wildcard: true}
}

// IsWildcard reports whether the grant covers every tenant.
func (g Grant) IsWildcard() bool {
	return g.wildcard
}

// Contains reports set membership. Wildcard grants contain every id.
func (g Grant) Contains(tenantID string) bool {
	if g.wildcard {
		return true
	}
	_, ok := g.tenants[tenantID]
	return ok
}

// UnmarshalJSON accepts either the wildcard string or an array of ids.
func (g *Grant) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != Wildcard {
			return fmt.Errorf("invalid grant string %q", s)
		}
		*g = NewWildcardGrant()
		return nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("grant must be %q or an array of tenant ids: %w", Wildcard, err)
	}
	*g = NewGrant(ids...)
	return nil
}

// TenantSource is the slice of the tenant repository the index reads from.
type TenantSource interface {
	List(ctx context.Context) ([]*tenant.Tenant, error)
}

// Index maps user ids to grants and resolves them against the current
// tenant directory. Grants are populated at bootstrap; a user with no
// entry has zero access.
type Index struct {
	mu      sync.RWMutex
	grants  map[string]Grant
	tenants TenantSource
}

// NewIndex creates an empty index backed by the given tenant source.
func NewIndex(tenants TenantSource) *Index {
	return &Index{
		grants:  make(map[string]Grant),
		tenants: tenants,
	}
}

// SetGrant installs or replaces a user's grant.
func (i *Index) SetGrant(userID string, grant Grant) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.grants[userID] = grant
}

// TenantsFor resolves the tenants a user may see. Wildcard grants return a
// snapshot of the full directory; explicit grants return the tenants that
// still exist, silently skipping stale ids. Unknown users get an empty
// slice, never an error.
func (i *Index) TenantsFor(ctx context.Context, userID string) ([]*tenant.Tenant, error) {
	i.mu.RLock()
	grant, ok := i.grants[userID]
	i.mu.RUnlock()

	if !ok {
		return []*tenant.Tenant{}, nil
	}

	if grant.IsWildcard() {
		return i.tenants.List(ctx)
	}

	all, err := i.tenants.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*tenant.Tenant, 0, len(all))
	for _, t := range all {
		if grant.Contains(t.ID) {
			out = append(out, t)
		}
	}

	return out, nil
}

// HasAccess reports whether the user's grant covers the tenant id. This is
// a pure grant lookup: it does not check that the tenant currently exists,
// so a wildcard user is granted access to any id.
func (i *Index) HasAccess(userID, tenantID string) bool {
	i.mu.RLock()
	grant, ok := i.grants[userID]
	i.mu.RUnlock()

	if !ok {
		return false
	}

	return grant.Contains(tenantID)
}
