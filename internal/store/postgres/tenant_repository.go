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

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/htpi/tenant-service/internal/tenant"
)

// TenantRepository implements tenant.Repository on PostgreSQL. Id
// allocation rides the tenant_id_seq sequence; merge-updates run inside a
// transaction with a row lock so concurrent patches serialize.
type TenantRepository struct {
	db *DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// Create allocates the next sequential id and inserts the record.
func (r *TenantRepository) Create(ctx context.Context, name string, features []string) (*tenant.Tenant, error) {
	var seq int64
	if err := r.db.pool.QueryRow(ctx, `SELECT nextval('tenant_id_seq')`).Scan(&seq); err != nil {
		return nil, fmt.Errorf("failed to allocate tenant id: %w", err)
	}

	if features == nil {
		features = tenant.DefaultFeatures
	}

	t := &tenant.Tenant{
		ID:     fmt.Sprintf("tenant-%03d", seq),
		Name:   name,
		Status: tenant.StatusActive,
		Settings: tenant.Settings{
			ClaimAccounts: []tenant.ClaimAccount{},
			Features:      append([]string(nil), features...),
		},
		CreatedAt: time.Now().UTC(),
	}

	settings, err := json.Marshal(t.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}

	_, err = r.db.pool.Exec(ctx, `
		INSERT INTO tenants (id, name, status, settings, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, t.ID, t.Name, t.Status, settings, t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert tenant: %w", err)
	}

	return t, nil
}

// Update applies a patch inside a transaction with the row locked, so the
// read-merge-write is atomic with respect to concurrent handlers.
func (r *TenantRepository) Update(ctx context.Context, id string, patch tenant.Patch) (*tenant.Tenant, error) {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	t, err := scanTenant(tx.QueryRow(ctx, `
		SELECT id, name, status, settings, created_at
		FROM tenants WHERE id = $1
		FOR UPDATE
	`, id))
	if err != nil {
		return nil, err
	}

	t.Apply(patch)

	settings, err := json.Marshal(t.Settings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE tenants SET name = $2, status = $3, settings = $4
		WHERE id = $1
	`, t.ID, t.Name, t.Status, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to update tenant: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit update: %w", err)
	}

	return t, nil
}

// Get retrieves a tenant by id.
func (r *TenantRepository) Get(ctx context.Context, id string) (*tenant.Tenant, error) {
	return scanTenant(r.db.pool.QueryRow(ctx, `
		SELECT id, name, status, settings, created_at
		FROM tenants WHERE id = $1
	`, id))
}

// List returns every tenant in insertion order.
func (r *TenantRepository) List(ctx context.Context) ([]*tenant.Tenant, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, name, status, settings, created_at
		FROM tenants ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*tenant.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}

	return tenants, rows.Err()
}

// Seed inserts bootstrap records and advances the id sequence past the
// highest seeded id.
func (r *TenantRepository) Seed(ctx context.Context, tenants []*tenant.Tenant) error {
	for _, t := range tenants {
		settings, err := json.Marshal(t.Settings)
		if err != nil {
			return fmt.Errorf("failed to encode settings for %s: %w", t.ID, err)
		}

		_, err = r.db.pool.Exec(ctx, `
			INSERT INTO tenants (id, name, status, settings, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING
		`, t.ID, t.Name, t.Status, settings, t.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to seed tenant %s: %w", t.ID, err)
		}
	}

	// A fresh sequence reports last_value=1 before its first use, and
	// setval would mark it called, skipping tenant-001. Leave the
	// sequence untouched when the document seeds no sequential ids.
	maxSeq := maxSequence(tenants)
	if maxSeq == 0 {
		return nil
	}

	// Keep allocation strictly above any seeded tenant-NNN id without
	// regressing a sequence that has already advanced further.
	_, err := r.db.pool.Exec(ctx, `
		SELECT setval('tenant_id_seq',
			GREATEST((SELECT last_value FROM tenant_id_seq), $1))
	`, maxSeq)
	if err != nil {
		return fmt.Errorf("failed to advance tenant sequence: %w", err)
	}

	return nil
}

// maxSequence returns the highest NNN among seeded tenant-NNN ids, or
// zero when no id matches the pattern.
func maxSequence(tenants []*tenant.Tenant) int64 {
	var max int64
	for _, t := range tenants {
		rest, ok := strings.CutPrefix(t.ID, "tenant-")
		if !ok {
			continue
		}
		seq, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || seq <= 0 {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return max
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTenant(row rowScanner) (*tenant.Tenant, error) {
	var t tenant.Tenant
	var settings []byte

	if err := row.Scan(&t.ID, &t.Name, &t.Status, &settings, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to scan tenant: %w", err)
	}

	if err := json.Unmarshal(settings, &t.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	return &t, nil
}
