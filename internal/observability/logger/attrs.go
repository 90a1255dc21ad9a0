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

package logger

import "log/slog"

// Common attribute keys for consistent logging across the application

// Message attributes
func Subject(subject string) slog.Attr {
	return slog.String("subject", subject)
}

func ReplySubject(subject string) slog.Attr {
	return slog.String("reply_subject", subject)
}

func MessageID(id string) slog.Attr {
	return slog.String("message_id", id)
}

func ClientID(id string) slog.Attr {
	return slog.String("client_id", id)
}

func Portal(portal string) slog.Attr {
	return slog.String("portal", portal)
}

// Directory attributes
func TenantID(id string) slog.Attr {
	return slog.String("tenant_id", id)
}

func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

func TenantCount(n int) slog.Attr {
	return slog.Int("tenant_count", n)
}

// Error attributes
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Component attributes
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Operation(op string) slog.Attr {
	return slog.String("operation", op)
}

func Duration(ms int64) slog.Attr {
	return slog.Int64("duration_ms", ms)
}

// String creates a generic string attribute
func String(key, value string) slog.Attr {
	return slog.String(key, value)
}
