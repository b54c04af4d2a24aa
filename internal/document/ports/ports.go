// Package ports defines shared interfaces for the document module.
// Interfaces live here when consumed by multiple packages to avoid duplication.
package ports

import (
	"context"
	"log/slog"
	"time"

	"capture-gateway/internal/document/models"
	"capture-gateway/internal/platform/middleware"
	"capture-gateway/pkg/platform/audit"
)

// VersionStore persists document versions. Versions are append-only; a store
// never mutates or deletes an existing version.
type VersionStore interface {
	// Append stores a new version and assigns it the next version number.
	// The stored version is returned with Version populated.
	Append(ctx context.Context, version *models.DocumentVersion) (*models.DocumentVersion, error)

	// Get retrieves one specific version of a document.
	Get(ctx context.Context, din string, version int) (*models.DocumentVersion, error)

	// Latest retrieves the highest-numbered version of a document.
	Latest(ctx context.Context, din string) (*models.DocumentVersion, error)

	// List returns all versions of a document in ascending version order.
	List(ctx context.Context, din string) ([]*models.DocumentVersion, error)
}

// SnapshotCache caches raw version channels keyed by din and version.
// Implementations treat misses and backend failures alike: (nil, false).
type SnapshotCache interface {
	Get(ctx context.Context, din string, version int) (*models.DocumentVersion, bool)
	Set(ctx context.Context, version *models.DocumentVersion)
}

// AuditPublisher emits audit events for review-relevant operations.
type AuditPublisher = audit.Publisher

// LogAudit records an audit-worthy action to the structured logger and, when a
// publisher is wired, to the audit sink. Request metadata is pulled from ctx.
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
	if e.Device == "" {
		e.Device = middleware.GetDevice(ctx)
	}

	if logger != nil {
		logger.InfoContext(ctx, e.Action,
			"log_type", "audit",
			"document_id", e.DocumentID,
			"version", e.Version,
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
