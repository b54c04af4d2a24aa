// Package domain holds the typed identifiers shared across services.
// Typed IDs prevent cross-type assignment at compile time; parse functions
// enforce validity at trust boundaries.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "capture-gateway/pkg/domain-errors"
)

// DocumentID is the document identification number (DIN) assigned by the
// upstream capture workflow. It is opaque to this service: any non-empty
// token without whitespace is accepted.
type DocumentID string

// ParseDocumentID validates and returns a DocumentID.
func ParseDocumentID(s string) (DocumentID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "document id cannot be empty")
	}
	if strings.ContainsAny(s, " \t\n") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "document id cannot contain whitespace")
	}
	return DocumentID(s), nil
}

func (d DocumentID) String() string {
	return string(d)
}

// IsNil returns true when the id is empty.
func (d DocumentID) IsNil() bool {
	return d == ""
}

// UploadID is the upload identification number (UIN) tying a document back
// to the batch it arrived in. Opaque, same rules as DocumentID but optional.
type UploadID string

func (u UploadID) String() string {
	return string(u)
}

// IsNil returns true when the id is empty.
func (u UploadID) IsNil() bool {
	return u == ""
}

// ReviewerID identifies a reviewer account.
type ReviewerID uuid.UUID

// ParseReviewerID validates and returns a ReviewerID.
// IDs must be valid, non-empty, non-nil UUIDs.
func ParseReviewerID(s string) (ReviewerID, error) {
	if s == "" {
		return ReviewerID(uuid.Nil), dErrors.New(dErrors.CodeInvalidInput, "reviewer id cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return ReviewerID(uuid.Nil), dErrors.Wrap(err, dErrors.CodeInvalidInput, "reviewer id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return ReviewerID(uuid.Nil), dErrors.New(dErrors.CodeInvalidInput, "reviewer id cannot be the nil UUID")
	}
	return ReviewerID(parsed), nil
}

// NewReviewerID generates a fresh reviewer id.
func NewReviewerID() ReviewerID {
	return ReviewerID(uuid.New())
}

func (r ReviewerID) String() string {
	return uuid.UUID(r).String()
}

// IsNil returns true for the zero UUID.
func (r ReviewerID) IsNil() bool {
	return uuid.UUID(r) == uuid.Nil
}
