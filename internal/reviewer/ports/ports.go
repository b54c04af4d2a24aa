// Package ports defines shared interfaces for the reviewer module.
package ports

import (
	"context"
	"log/slog"
	"time"

	"capture-gateway/internal/platform/middleware"
	"capture-gateway/pkg/platform/audit"
)

// AuditPublisher emits audit events for account administration.
type AuditPublisher = audit.Publisher

// LogAudit records an admin action to the structured logger and, when a
// publisher is wired, to the audit sink.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event audit.AuditEvent, e audit.Event) {
	e.Action = string(event)
	e.Category = event.Category()
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.RequestID == "" {
		e.RequestID = middleware.GetRequestID(ctx)
	}
	if e.ClientIP == "" {
		e.ClientIP = middleware.GetClientIP(ctx)
	}

	if logger != nil {
		logger.InfoContext(ctx, e.Action,
			"log_type", "audit",
			"actor_id", e.ActorID,
			"request_id", e.RequestID,
		)
	}

	if publisher == nil {
		return
	}
	if err := publisher.Emit(ctx, e); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", e.Action, "error", err)
	}
}
