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

package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/htpi/tenant-service/internal/access"
	"github.com/htpi/tenant-service/internal/audit"
	"github.com/htpi/tenant-service/internal/tenant"
)

// Document is the startup seed: the tenant directory and the user grants.
// In production both come from the upstream document store; the file form
// exists for local and staging deployments.
type Document struct {
	Tenants []*tenant.Tenant        `json:"tenants"`
	Grants  map[string]access.Grant `json:"grants"`
}

// Load parses a bootstrap document from a file. An empty path yields an
// empty document, which is a valid cold start.
func Load(path string) (*Document, error) {
	if path == "" {
		return &Document{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bootstrap file: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse bootstrap file: %w", err)
	}

	return &doc, nil
}

// Apply seeds the repository and the access index from the document.
func Apply(ctx context.Context, doc *Document, repo tenant.Repository, index *access.Index, auditLogger audit.Logger) error {
	if err := repo.Seed(ctx, doc.Tenants); err != nil {
		return fmt.Errorf("failed to seed tenants: %w", err)
	}

	for userID, grant := range doc.Grants {
		index.SetGrant(userID, grant)
	}

	auditLogger.Log(ctx, audit.Event{
		Type: audit.TypeBootstrapCompleted,
		Metadata: map[string]any{
			"tenants": len(doc.Tenants),
			"grants":  len(doc.Grants),
		},
	})

	return nil
}
