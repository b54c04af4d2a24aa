// Package models defines the reviewer account aggregate.
package models

import (
	"net/mail"
	"strings"
	"time"

	id "capture-gateway/pkg/domain"
	dErrors "capture-gateway/pkg/domain-errors"
	emailpkg "capture-gateway/pkg/email"
)

// Role scopes what a reviewer account may do in the review UI.
type Role string

const (
	// RoleReviewer works the exception queue and edits documents.
	RoleReviewer Role = "reviewer"
	// RoleSupervisor additionally signs off on error-severity exceptions.
	RoleSupervisor Role = "supervisor"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleReviewer, RoleSupervisor:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Reviewer is the aggregate root for a review account.
//
// Invariants:
//   - Email is a valid address and unique per store
//   - DisplayName is at most 128 characters; when omitted it is derived
//     from the email local part
//   - Role is one of the defined roles
//   - SecretHash holds a bcrypt hash, never plaintext
//   - Deactivation is one-way; reactivation requires a new account
type Reviewer struct {
	ID          id.ReviewerID `json:"id"`
	Email       string        `json:"email"`
	DisplayName string        `json:"display_name"`
	Role        Role          `json:"role"`
	Active      bool          `json:"active"`
	SecretHash  string        `json:"-"` // Never serialize - contains bcrypt hash
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func NewReviewer(reviewerID id.ReviewerID, email, displayName string, role Role, secretHash string, now time.Time) (*Reviewer, error) {
	if reviewerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "reviewer id cannot be nil")
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid email address")
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = emailpkg.DeriveDisplayName(email)
	}
	if len(displayName) > 128 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "display name must be 128 characters or less")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	if secretHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "secret hash cannot be empty")
	}

	return &Reviewer{
		ID:          reviewerID,
		Email:       email,
		DisplayName: displayName,
		Role:        role,
		Active:      true,
		SecretHash:  secretHash,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Deactivate marks the account inactive. Deactivating twice is an error so
// callers notice redundant admin actions.
func (r *Reviewer) Deactivate(now time.Time) error {
	if !r.Active {
		return dErrors.New(dErrors.CodeConflict, "reviewer is already deactivated")
	}
	r.Active = false
	r.UpdatedAt = now
	return nil
}

// RotateSecret swaps in a new secret hash. Inactive accounts cannot rotate.
func (r *Reviewer) RotateSecret(secretHash string, now time.Time) error {
	if !r.Active {
		return dErrors.New(dErrors.CodeConflict, "cannot rotate secret of a deactivated reviewer")
	}
	if secretHash == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "secret hash cannot be empty")
	}
	r.SecretHash = secretHash
	r.UpdatedAt = now
	return nil
}
