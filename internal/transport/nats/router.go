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
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/htpi/tenant-service/internal/access"
	"github.com/htpi/tenant-service/internal/audit"
	"github.com/htpi/tenant-service/internal/observability/logger"
	"github.com/htpi/tenant-service/internal/observability/metrics"
	"github.com/htpi/tenant-service/internal/tenant"
)

// Publisher is the slice of the broker connection the router publishes
// replies through. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Message is one inbound broker delivery, decoupled from the client
// library so handlers can be exercised without a running broker.
type Message struct {
	Subject string
	Data    []byte
	Reply   string
	respond func(data []byte) error
}

// Respond sends a direct reply on the message's reply-to subject.
func (m *Message) Respond(data []byte) error {
	if m.respond == nil || m.Reply == "" {
		return fmt.Errorf("no reply subject on message")
	}
	return m.respond(data)
}

// CanRespond reports whether the delivery carries a reply-to subject.
func (m *Message) CanRespond() bool {
	return m.respond != nil && m.Reply != ""
}

type handlerFunc func(ctx context.Context, msg *Message)

// Router binds broker subjects to handlers. Each delivery runs in its own
// goroutine; a failing or malformed message never terminates the process
// or blocks other in-flight messages.
type Router struct {
	pub         Publisher
	tenants     *tenant.Service
	access      *access.Index
	auditLogger audit.Logger
	meter       *metrics.Meter
	limiter     *RateLimiter
}

// NewRouter creates a new request router
func NewRouter(
	pub Publisher,
	tenants *tenant.Service,
	accessIndex *access.Index,
	auditLogger audit.Logger,
	meter *metrics.Meter,
	limiter *RateLimiter,
) *Router {
	return &Router{
		pub:         pub,
		tenants:     tenants,
		access:      accessIndex,
		auditLogger: auditLogger,
		meter:       meter,
		limiter:     limiter,
	}
}

// routes maps every request subject to its handler.
func (r *Router) routes() map[string]handlerFunc {
	return map[string]handlerFunc{
		SubjectCreate:       r.handleCreate,
		SubjectUpdate:       r.handleUpdate,
		SubjectList:         r.handleList,
		SubjectGet:          r.handleGet,
		SubjectListForUser:  r.handleListForUser,
		SubjectVerifyAccess: r.handleVerifyAccess,
	}
}

// Subscribe registers every subject on the connection. A subscribe failure
// here is fatal to service startup.
func (r *Router) Subscribe(nc *nats.Conn) error {
	for subject, handle := range r.routes() {
		if _, err := nc.Subscribe(subject, r.msgHandler(subject, handle)); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
	}
	slog.Info("tenant service subscriptions established", logger.Component("router"))
	return nil
}

// msgHandler adapts a broker delivery into an independently scheduled
// handler task.
func (r *Router) msgHandler(subject string, handle handlerFunc) nats.MsgHandler {
	return func(m *nats.Msg) {
		msg := &Message{
			Subject: m.Subject,
			Data:    m.Data,
			Reply:   m.Reply,
			respond: m.Respond,
		}
		go r.Handle(subject, handle, msg)
	}
}

// Dispatch routes a message by subject. Unknown subjects are logged and
// dropped; they can only appear through a misconfigured subscription.
func (r *Router) Dispatch(msg *Message) {
	handle, ok := r.routes()[msg.Subject]
	if !ok {
		slog.Warn("message on unrouted subject", logger.Subject(msg.Subject))
		return
	}
	r.Handle(msg.Subject, handle, msg)
}

// Handle runs one handler invocation with panic recovery, rate limiting
// and per-subject instrumentation.
func (r *Router) Handle(subject string, handle handlerFunc, msg *Message) {
	ctx := context.Background()
	msgLog := slog.With(logger.Subject(subject), logger.MessageID(uuid.NewString()))
	attrs := metric.WithAttributes(attribute.String("subject", subject))

	r.meter.Messages.Add(ctx, 1, attrs)

	if r.limiter != nil && !r.limiter.Allow(subject) {
		msgLog.WarnContext(ctx, "message dropped by rate limiter")
		return
	}

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r.meter.HandlerFailures.Add(ctx, 1, attrs)
			msgLog.ErrorContext(ctx, "handler panic", logger.String("panic", fmt.Sprint(rec)))
		}
		r.meter.HandlerDuration.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
	}()

	handle(ctx, msg)
}

// publish marshals and fire-and-forget publishes a reply envelope. Publish
// failures are logged, never propagated: the request side observes them
// only as a missing response.
func (r *Router) publish(ctx context.Context, subject string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode reply", logger.ReplySubject(subject), logger.Error(err))
		return
	}
	if err := r.pub.Publish(subject, data); err != nil {
		slog.ErrorContext(ctx, "failed to publish reply", logger.ReplySubject(subject), logger.Error(err))
	}
}

// publishError sends the failure form of the envelope, clientId echoed.
func (r *Router) publishError(ctx context.Context, subject, clientID, message string) {
	r.publish(ctx, subject, ErrorResponse{
		Success:  false,
		Error:    message,
		ClientID: clientID,
	})
}
