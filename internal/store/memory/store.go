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

package memory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/htpi/tenant-service/internal/tenant"
)

// Store is an in-memory, insertion-ordered tenant repository. A single
// mutex guards id allocation, insert and merge-update so concurrent
// handlers observe a consistent directory. The lock is held only for the
// duration of the copy, never across a publish.
type Store struct {
	mu      sync.Mutex
	tenants map[string]*tenant.Tenant
	order   []string
	nextSeq int
}

// New creates an empty store. The first allocated id is tenant-001.
func New() *Store {
	return &Store{
		tenants: make(map[string]*tenant.Tenant),
		nextSeq: 1,
	}
}

// Create allocates the next sequential id, applies the default feature set
// when features is nil, stamps UTC creation time and inserts the record.
func (s *Store) Create(ctx context.Context, name string, features []string) (*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("tenant-%03d", s.nextSeq)
	s.nextSeq++

	if features == nil {
		features = tenant.DefaultFeatures
	}

	t := &tenant.Tenant{
		ID:     id,
		Name:   name,
		Status: tenant.StatusActive,
		Settings: tenant.Settings{
			ClaimAccounts: []tenant.ClaimAccount{},
			Features:      append([]string(nil), features...),
		},
		CreatedAt: time.Now().UTC(),
	}

	s.tenants[id] = t
	s.order = append(s.order, id)

	return t.Clone(), nil
}

// Update applies a patch to an existing tenant. The read-merge-write runs
// under the store lock so concurrent patches never drop each other's keys.
func (s *Store) Update(ctx context.Context, id string, patch tenant.Patch) (*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenants[id]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}

	t.Apply(patch)

	return t.Clone(), nil
}

// Get returns a copy of the record, or ErrTenantNotFound.
func (s *Store) Get(ctx context.Context, id string) (*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenants[id]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}

	return t.Clone(), nil
}

// List returns a snapshot of every tenant in insertion order.
func (s *Store) List(ctx context.Context) ([]*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*tenant.Tenant, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tenants[id].Clone())
	}

	return out, nil
}

// Seed inserts bootstrap records and advances the sequence counter past the
// highest seeded id, so allocation stays strictly increasing.
func (s *Store) Seed(ctx context.Context, tenants []*tenant.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range tenants {
		if t.ID == "" {
			return fmt.Errorf("seed tenant without id")
		}
		if _, ok := s.tenants[t.ID]; ok {
			return fmt.Errorf("duplicate seed tenant id %s", t.ID)
		}
		s.tenants[t.ID] = t.Clone()
		s.order = append(s.order, t.ID)

		if seq, ok := parseSequence(t.ID); ok && seq >= s.nextSeq {
			s.nextSeq = seq + 1
		}
	}

	return nil
}

// parseSequence extracts NNN from a tenant-NNN id.
func parseSequence(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, "tenant-")
	if !ok {
		return 0, false
	}
	seq, err := strconv.Atoi(rest)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}
