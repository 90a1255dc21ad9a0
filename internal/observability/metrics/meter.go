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

package metrics

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Config holds metrics configuration
type Config struct {
	Enabled bool
}

// Meter holds the instruments the service records on. When disabled the
// instruments come from the global no-op provider.
type Meter struct {
	Messages        metric.Int64Counter
	HandlerFailures metric.Int64Counter
	HandlerDuration metric.Float64Histogram
}

// New creates the meter and the per-subject message instruments.
func New(cfg Config, serviceName string) (*Meter, error) {
	name := serviceName
	if !cfg.Enabled {
		name = "noop"
	}
	meter := otel.Meter(name)

	messages, err := meter.Int64Counter(
		"tenant_messages_total",
		metric.WithDescription("Inbound broker messages by subject"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create message counter: %w", err)
	}

	failures, err := meter.Int64Counter(
		"tenant_handler_failures_total",
		metric.WithDescription("Handler failures by subject"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create failure counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		"tenant_handler_duration_ms",
		metric.WithDescription("Handler execution time by subject"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &Meter{
		Messages:        messages,
		HandlerFailures: failures,
		HandlerDuration: duration,
	}, nil
}
