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
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/htpi/tenant-service/internal/audit"
	"github.com/htpi/tenant-service/internal/observability/logger"
	"github.com/htpi/tenant-service/internal/tenant"
)

// handleCreate builds a tenant and publishes it on the admin channel.
func (r *Router) handleCreate(ctx context.Context, msg *Message) {
	var req CreateRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		r.dropUndeliverable(ctx, msg, err)
		return
	}
	if req.ClientID == "" {
		r.dropUndeliverable(ctx, msg, errors.New("missing clientId"))
		return
	}

	reply := adminReplySubject(req.ClientID)

	if req.Name == "" {
		r.publishError(ctx, reply, req.ClientID, "name is required")
		return
	}

	t, err := r.tenants.CreateTenant(ctx, req.Name, req.Features)
	if err != nil {
		r.publishError(ctx, reply, req.ClientID, err.Error())
		return
	}

	r.publish(ctx, reply, TenantResponse{
		Success:  true,
		Tenant:   t,
		ClientID: req.ClientID,
	})

	slog.InfoContext(ctx, "created tenant", logger.TenantID(t.ID), logger.ClientID(req.ClientID))
}

// handleUpdate patches a tenant. A missing tenant id yields the structured
// "Tenant not found" failure, never a process error.
func (r *Router) handleUpdate(ctx context.Context, msg *Message) {
	var req UpdateRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		r.dropUndeliverable(ctx, msg, err)
		return
	}
	if req.ClientID == "" {
		r.dropUndeliverable(ctx, msg, errors.New("missing clientId"))
		return
	}

	reply := adminReplySubject(req.ClientID)

	if req.TenantID == "" {
		r.publishError(ctx, reply, req.ClientID, "tenantId is required")
		return
	}

	t, err := r.tenants.UpdateTenant(ctx, req.TenantID, req.Patch)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			r.publishError(ctx, reply, req.ClientID, MsgTenantNotFound)
		} else {
			r.publishError(ctx, reply, req.ClientID, err.Error())
		}
		return
	}

	r.publish(ctx, reply, TenantResponse{
		Success:  true,
		Tenant:   t,
		ClientID: req.ClientID,
	})

	slog.InfoContext(ctx, "updated tenant", logger.TenantID(t.ID), logger.ClientID(req.ClientID))
}

// handleList publishes every tenant on the admin channel. The caller is
// trusted to be authorized out-of-band.
func (r *Router) handleList(ctx context.Context, msg *Message) {
	var req ListRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		r.dropUndeliverable(ctx, msg, err)
		return
	}
	if req.ClientID == "" {
		r.dropUndeliverable(ctx, msg, errors.New("missing clientId"))
		return
	}

	reply := adminReplySubject(req.ClientID)

	tenants, err := r.tenants.ListTenants(ctx)
	if err != nil {
		r.publishError(ctx, reply, req.ClientID, err.Error())
		return
	}

	r.publish(ctx, reply, TenantListResponse{
		Success:  true,
		Tenants:  tenants,
		ClientID: req.ClientID,
	})
}

// handleGet resolves a single tenant on the portal channel.
func (r *Router) handleGet(ctx context.Context, msg *Message) {
	var req GetRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		r.dropUndeliverable(ctx, msg, err)
		return
	}
	if req.ClientID == "" {
		r.dropUndeliverable(ctx, msg, errors.New("missing clientId"))
		return
	}

	portal := req.Portal
	if portal == "" {
		portal = DefaultPortal
	}
	reply := portalTenantReplySubject(portal, req.ClientID)

	t, err := r.tenants.GetTenant(ctx, req.TenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			r.publishError(ctx, reply, req.ClientID, MsgTenantNotFound)
		} else {
			r.publishError(ctx, reply, req.ClientID, err.Error())
		}
		return
	}

	r.publish(ctx, reply, TenantResponse{
		Success:  true,
		Tenant:   t,
		ClientID: req.ClientID,
	})
}

// handleListForUser resolves the tenants a user may see and publishes the
// filtered list on the portal channel.
func (r *Router) handleListForUser(ctx context.Context, msg *Message) {
	var req ListForUserRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		r.dropUndeliverable(ctx, msg, err)
		return
	}
	if req.ClientID == "" {
		r.dropUndeliverable(ctx, msg, errors.New("missing clientId"))
		return
	}

	portal := req.Portal
	if portal == "" {
		portal = DefaultPortal
	}
	reply := portalTenantsReplySubject(portal, req.ClientID)

	tenants, err := r.access.TenantsFor(ctx, req.UserID)
	if err != nil {
		r.publishError(ctx, reply, req.ClientID, err.Error())
		return
	}

	r.publish(ctx, reply, TenantListResponse{
		Success:  true,
		Tenants:  tenants,
		ClientID: req.ClientID,
	})

	slog.InfoContext(ctx, "listed tenants for user",
		logger.UserID(req.UserID), logger.TenantCount(len(tenants)), logger.Portal(portal))
}

// handleVerifyAccess answers the synchronous access check on the broker
// reply-to subject. The reply carries no success/clientId wrapper.
func (r *Router) handleVerifyAccess(ctx context.Context, msg *Message) {
	var req VerifyAccessRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		r.respondVerifyError(ctx, msg, err)
		return
	}

	hasAccess := r.access.HasAccess(req.UserID, req.TenantID)

	eventType := audit.TypeAccessDenied
	if hasAccess {
		eventType = audit.TypeAccessGranted
	}
	r.auditLogger.Log(ctx, audit.Event{
		Type:     eventType,
		TenantID: req.TenantID,
		ActorID:  req.UserID,
	})

	data, err := json.Marshal(VerifyAccessResponse{
		HasAccess: hasAccess,
		UserID:    req.UserID,
		TenantID:  req.TenantID,
	})
	if err != nil {
		r.respondVerifyError(ctx, msg, err)
		return
	}

	if err := msg.Respond(data); err != nil {
		slog.ErrorContext(ctx, "failed to send access reply", logger.Subject(msg.Subject), logger.Error(err))
	}
}

// respondVerifyError sends the failure form of the direct reply, falling
// back to log-and-drop when the delivery has no reply-to subject.
func (r *Router) respondVerifyError(ctx context.Context, msg *Message, cause error) {
	if !msg.CanRespond() {
		r.dropUndeliverable(ctx, msg, cause)
		return
	}

	data, err := json.Marshal(VerifyAccessError{
		HasAccess: false,
		Error:     cause.Error(),
	})
	if err != nil {
		r.dropUndeliverable(ctx, msg, err)
		return
	}

	if err := msg.Respond(data); err != nil {
		slog.ErrorContext(ctx, "failed to send access error reply", logger.Subject(msg.Subject), logger.Error(err))
	}
}

// dropUndeliverable records a message whose reply subject cannot be
// derived. No reply is possible, so the error is only observable here.
func (r *Router) dropUndeliverable(ctx context.Context, msg *Message, cause error) {
	slog.ErrorContext(ctx, "dropping message without derivable reply subject",
		logger.Subject(msg.Subject), logger.Error(cause))
}
