// Package audit defines the audit event model shared by all domain services.
// Events are emitted from domain logic and fanned out by a publisher; Kafka
// is the durable sink in production, the log is the fallback.
package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing downstream.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance for the
	// invoice-processing trail: version saves, exception sign-offs, reviewer
	// account changes. Long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for debugging and operational
	// visibility: loads, comparisons, cache behavior. Short retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	Action    string

	// ActorID is the reviewer (or operator) performing the action.
	ActorID string
	// DocumentID / UploadID address the document instance the action touched.
	DocumentID string
	UploadID   string
	// Version is the document version involved, zero when not applicable.
	Version int

	Reason    string
	RequestID string
	ClientIP  string
	// Device is the parsed client device summary from the request metadata.
	Device string
}

// AuditEvent names every action this service emits.
type AuditEvent string

const (
	// Document events
	EventDocumentLoaded    AuditEvent = "document_loaded"
	EventVersionSaved      AuditEvent = "document_version_saved"
	EventVersionsCompared  AuditEvent = "document_versions_compared"
	EventExceptionsFlagged AuditEvent = "document_exceptions_flagged"

	// Reviewer administration events
	EventReviewerCreated       AuditEvent = "reviewer_created"
	EventReviewerDeactivated   AuditEvent = "reviewer_deactivated"
	EventReviewerSecretRotated AuditEvent = "reviewer_secret_rotated"
)

// eventCategories is the source of truth for action-to-category routing.
var eventCategories = map[AuditEvent]EventCategory{
	EventDocumentLoaded:    CategoryOperations,
	EventVersionsCompared:  CategoryOperations,
	EventVersionSaved:      CategoryCompliance,
	EventExceptionsFlagged: CategoryCompliance,

	EventReviewerCreated:       CategoryCompliance,
	EventReviewerDeactivated:   CategoryCompliance,
	EventReviewerSecretRotated: CategoryCompliance,
}

// Category returns the routing category for the event, defaulting unknown
// actions to operations so nothing is dropped.
func (e AuditEvent) Category() EventCategory {
	if c, ok := eventCategories[e]; ok {
		return c
	}
	return CategoryOperations
}

// Publisher emits audit events. Implementations must be safe for concurrent use.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}
