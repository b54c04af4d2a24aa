// Package models defines the document-version domain model. A document is
// addressed by its DIN; each save appends an immutable version holding the two
// raw wire channels (field data and exception data) exactly as reconstructed.
package models

import (
	"encoding/json"
	"strings"
	"time"

	dErrors "capture-gateway/pkg/domain-errors"
)

// DocumentStatus tracks where a document sits in the review workflow.
type DocumentStatus string

const (
	StatusPending   DocumentStatus = "pending"
	StatusInReview  DocumentStatus = "in_review"
	StatusCompleted DocumentStatus = "completed"
	StatusRejected  DocumentStatus = "rejected"
)

func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInReview, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

func (s DocumentStatus) String() string {
	return string(s)
}

// VersionSource records what produced a version.
type VersionSource string

const (
	// SourceExtraction marks the initial version written by the capture pipeline.
	SourceExtraction VersionSource = "extraction"
	// SourceReviewer marks versions saved by a reviewer from the editing UI.
	SourceReviewer VersionSource = "reviewer"
)

func (s VersionSource) IsValid() bool {
	switch s {
	case SourceExtraction, SourceReviewer:
		return true
	}
	return false
}

// DocumentVersion is one immutable snapshot of a document's wire state.
// Payload and Exceptions hold the two JSON channels verbatim; parsing into
// the form model happens on load, never at rest.
type DocumentVersion struct {
	DIN        string
	UploadID   string
	Version    int
	Payload    json.RawMessage
	Exceptions json.RawMessage
	Source     VersionSource
	CreatedAt  time.Time
	CreatedBy  string
}

// Status derives the review status implied by a version's provenance:
// extraction output is pending, reviewer saves put the document in review.
// The sign-off states are assigned by the downstream export flow.
func (v *DocumentVersion) Status() DocumentStatus {
	if v.Source == SourceReviewer {
		return StatusInReview
	}
	return StatusPending
}

// NewDocumentVersion validates and builds a version record. Version numbers
// are assigned by the store on append, so zero is accepted here.
func NewDocumentVersion(din, uploadID string, payload, exceptions json.RawMessage, source VersionSource, createdBy string) (*DocumentVersion, error) {
	if strings.TrimSpace(din) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "din is required")
	}
	if len(payload) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "payload is required")
	}
	if !json.Valid(payload) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "payload is not valid JSON")
	}
	if len(exceptions) > 0 && !json.Valid(exceptions) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "exceptions is not valid JSON")
	}
	if !source.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid version source")
	}

	return &DocumentVersion{
		DIN:        strings.TrimSpace(din),
		UploadID:   strings.TrimSpace(uploadID),
		Payload:    payload,
		Exceptions: exceptions,
		Source:     source,
		CreatedAt:  time.Now().UTC(),
		CreatedBy:  createdBy,
	}, nil
}
