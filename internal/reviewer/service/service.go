// Package service implements reviewer account administration.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"capture-gateway/internal/reviewer/models"
	"capture-gateway/internal/reviewer/ports"
	"capture-gateway/internal/reviewer/secrets"
	id "capture-gateway/pkg/domain"
	dErrors "capture-gateway/pkg/domain-errors"
	"capture-gateway/pkg/platform/audit"
	"capture-gateway/pkg/platform/sentinel"
)

// Store persists reviewer accounts. Missing lookups return (nil, nil);
// sentinel errors report infrastructure facts.
type Store interface {
	Create(ctx context.Context, reviewer *models.Reviewer) error
	GetByID(ctx context.Context, reviewerID id.ReviewerID) (*models.Reviewer, error)
	GetByEmail(ctx context.Context, email string) (*models.Reviewer, error)
	List(ctx context.Context) ([]*models.Reviewer, error)
	Update(ctx context.Context, reviewer *models.Reviewer) error
}

type Service struct {
	store          Store
	auditPublisher ports.AuditPublisher
	logger         *slog.Logger
	now            func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("reviewer store is required")
	}

	svc := &Service{
		store: store,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// Create registers a reviewer account and returns it with the one-time
// plaintext secret. The secret is never stored or logged.
func (s *Service) Create(ctx context.Context, email, displayName string, role models.Role) (*models.Reviewer, string, error) {
	secret, err := secrets.Generate()
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate secret")
	}
	hash, err := secrets.Hash(secret)
	if err != nil {
		return nil, "", err
	}

	reviewer, err := models.NewReviewer(id.NewReviewerID(), email, displayName, role, hash, s.now().UTC())
	if err != nil {
		return nil, "", err
	}

	if err := s.store.Create(ctx, reviewer); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, "", dErrors.Wrap(err, dErrors.CodeConflict, "email already registered")
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to create reviewer")
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventReviewerCreated, audit.Event{
		ActorID: reviewer.ID.String(),
		Reason:  string(reviewer.Role),
	})
	return reviewer, secret, nil
}

// Get returns one reviewer account.
func (s *Service) Get(ctx context.Context, reviewerID id.ReviewerID) (*models.Reviewer, error) {
	if reviewerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "reviewer id is required")
	}
	reviewer, err := s.store.GetByID(ctx, reviewerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get reviewer")
	}
	if reviewer == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "reviewer not found")
	}
	return reviewer, nil
}

// List returns all reviewer accounts ordered by email.
func (s *Service) List(ctx context.Context) ([]*models.Reviewer, error) {
	reviewers, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list reviewers")
	}
	return reviewers, nil
}

// Deactivate marks an account inactive. One-way.
func (s *Service) Deactivate(ctx context.Context, reviewerID id.ReviewerID) (*models.Reviewer, error) {
	reviewer, err := s.Get(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	if err := reviewer.Deactivate(s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, reviewer); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update reviewer")
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventReviewerDeactivated, audit.Event{
		ActorID: reviewer.ID.String(),
	})
	return reviewer, nil
}

// RotateSecret replaces the access secret, returning the new plaintext once.
func (s *Service) RotateSecret(ctx context.Context, reviewerID id.ReviewerID) (*models.Reviewer, string, error) {
	reviewer, err := s.Get(ctx, reviewerID)
	if err != nil {
		return nil, "", err
	}

	secret, err := secrets.Generate()
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate secret")
	}
	hash, err := secrets.Hash(secret)
	if err != nil {
		return nil, "", err
	}
	if err := reviewer.RotateSecret(hash, s.now().UTC()); err != nil {
		return nil, "", err
	}
	if err := s.store.Update(ctx, reviewer); err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to update reviewer")
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventReviewerSecretRotated, audit.Event{
		ActorID: reviewer.ID.String(),
	})
	return reviewer, secret, nil
}

// VerifySecret checks a login attempt against the stored hash. Inactive
// accounts always fail.
func (s *Service) VerifySecret(ctx context.Context, email, secret string) (*models.Reviewer, error) {
	reviewer, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get reviewer")
	}
	if reviewer == nil || !reviewer.Active {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	if err := secrets.Verify(secret, reviewer.SecretHash); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	return reviewer, nil
}
