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

package nats

import (
	"github.com/htpi/tenant-service/internal/tenant"
)

// Request subjects. Dispatch is strictly by subject; payload content never
// influences routing.
const (
	SubjectCreate       = "htpi.tenant.create"
	SubjectUpdate       = "htpi.tenant.update"
	SubjectList         = "htpi.tenant.list"
	SubjectGet          = "htpi.tenant.get"
	SubjectListForUser  = "htpi.tenant.list.for.user"
	SubjectVerifyAccess = "htpi.tenant.verify.access"
)

// DefaultPortal is used when a request omits the portal discriminator.
const DefaultPortal = "customer"

// MsgTenantNotFound is the wire error message for a missing tenant id.
const MsgTenantNotFound = "Tenant not found"

// Reply subject derivation. Admin operations answer on a fixed prefix;
// portal operations answer on the caller-supplied portal prefix.

func adminReplySubject(clientID string) string {
	return "admin.tenant.response." + clientID
}

func portalTenantReplySubject(portal, clientID string) string {
	return portal + ".tenant.response." + clientID
}

func portalTenantsReplySubject(portal, clientID string) string {
	return portal + ".tenants.response." + clientID
}

// CreateRequest asks for a new tenant. Features may be omitted; the store
// applies the default feature set in that case.
type CreateRequest struct {
	ClientID string   `json:"clientId"`
	Name     string   `json:"name"`
	Features []string `json:"features"`
}

// UpdateRequest patches an existing tenant. The embedded patch fields are
// all optional; settings merge shallowly.
type UpdateRequest struct {
	ClientID string `json:"clientId"`
	TenantID string `json:"tenantId"`
	tenant.Patch
}

// ListRequest asks for the full directory (admin channel, unfiltered).
type ListRequest struct {
	ClientID string `json:"clientId"`
}

// GetRequest asks for a single tenant on a portal channel.
type GetRequest struct {
	ClientID string `json:"clientId"`
	TenantID string `json:"tenantId"`
	Portal   string `json:"portal"`
}

// ListForUserRequest asks for the tenants a user may see.
type ListForUserRequest struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
	Portal   string `json:"portal"`
}

// VerifyAccessRequest is the direct request/reply access check. It carries
// no clientId: the reply goes to the broker reply-to subject.
type VerifyAccessRequest struct {
	UserID   string `json:"userId"`
	TenantID string `json:"tenantId"`
}

// TenantResponse is the envelope for single-tenant replies.
type TenantResponse struct {
	Success  bool           `json:"success"`
	Tenant   *tenant.Tenant `json:"tenant"`
	ClientID string         `json:"clientId"`
}

// TenantListResponse is the envelope for multi-tenant replies.
type TenantListResponse struct {
	Success  bool             `json:"success"`
	Tenants  []*tenant.Tenant `json:"tenants"`
	ClientID string           `json:"clientId"`
}

// ErrorResponse replaces the success-specific fields on failure. ClientID
// is always echoed on enveloped channels.
type ErrorResponse struct {
	Success  bool   `json:"success"`
	Error    string `json:"error"`
	ClientID string `json:"clientId"`
}

// VerifyAccessResponse is the direct reply for verify.access. It has no
// success/clientId wrapper: this is a synchronous RPC-style check.
type VerifyAccessResponse struct {
	HasAccess bool   `json:"hasAccess"`
	UserID    string `json:"userId"`
	TenantID  string `json:"tenantId"`
}

// VerifyAccessError is the direct reply when the access check itself fails.
type VerifyAccessError struct {
	HasAccess bool   `json:"hasAccess"`
	Error     string `json:"error"`
}
