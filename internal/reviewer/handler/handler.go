// Package handler exposes reviewer account administration over HTTP. The
// surface is operator-facing and protected by the shared admin token.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"capture-gateway/internal/platform/metrics"
	"capture-gateway/internal/platform/middleware"
	"capture-gateway/internal/reviewer/models"
	id "capture-gateway/pkg/domain"
	dErrors "capture-gateway/pkg/domain-errors"
	"capture-gateway/pkg/platform/httputil"
)

// Service defines the reviewer administration operations.
type Service interface {
	Create(ctx context.Context, email, displayName string, role models.Role) (*models.Reviewer, string, error)
	Get(ctx context.Context, reviewerID id.ReviewerID) (*models.Reviewer, error)
	List(ctx context.Context) ([]*models.Reviewer, error)
	Deactivate(ctx context.Context, reviewerID id.ReviewerID) (*models.Reviewer, error)
	RotateSecret(ctx context.Context, reviewerID id.ReviewerID) (*models.Reviewer, string, error)
}

// Handler handles reviewer administration endpoints.
type Handler struct {
	logger     *slog.Logger
	reviewers  Service
	metrics    *metrics.Metrics
	adminToken string
}

// New creates a new reviewer admin Handler.
func New(reviewers Service, logger *slog.Logger, metrics *metrics.Metrics, adminToken string) *Handler {
	return &Handler{
		logger:     logger,
		reviewers:  reviewers,
		metrics:    metrics,
		adminToken: adminToken,
	}
}

// Register registers the admin routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	adminRouter := chi.NewRouter()
	adminRouter.Use(middleware.Recovery(h.logger))
	adminRouter.Use(middleware.RequestID)
	adminRouter.Use(middleware.ClientMetadata)
	adminRouter.Use(middleware.Logger(h.logger))
	adminRouter.Use(middleware.Timeout(15 * time.Second))
	adminRouter.Use(middleware.ContentTypeJSON)
	adminRouter.Use(middleware.LatencyMiddleware(h.metrics))
	adminRouter.Use(middleware.RequireAdminToken(h.adminToken, h.logger))

	adminRouter.Post("/reviewers", h.handleCreate)
	adminRouter.Get("/reviewers", h.handleList)
	adminRouter.Get("/reviewers/{id}", h.handleGet)
	adminRouter.Post("/reviewers/{id}/deactivate", h.handleDeactivate)
	adminRouter.Post("/reviewers/{id}/rotate-secret", h.handleRotateSecret)

	r.Mount("/admin", adminRouter)
}

type createReviewerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// reviewerResponse is the outward shape of an account. The secret hash never
// leaves the service; the one-time plaintext rides along only on create and
// rotate responses.
type reviewerResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Active      bool   `json:"active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	Secret      string `json:"secret,omitempty"`
}

func newReviewerResponse(r *models.Reviewer, secret string) reviewerResponse {
	return reviewerResponse{
		ID:          r.ID.String(),
		Email:       r.Email,
		DisplayName: r.DisplayName,
		Role:        string(r.Role),
		Active:      r.Active,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   r.UpdatedAt.Format(time.RFC3339Nano),
		Secret:      secret,
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createReviewerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	role := models.Role(req.Role)
	if req.Role == "" {
		role = models.RoleReviewer
	}
	reviewer, secret, err := h.reviewers.Create(ctx, req.Email, req.DisplayName, role)
	if err != nil {
		h.logError(ctx, "failed to create reviewer", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, newReviewerResponse(reviewer, secret))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reviewers, err := h.reviewers.List(ctx)
	if err != nil {
		h.logError(ctx, "failed to list reviewers", err)
		httputil.WriteError(w, err)
		return
	}
	out := make([]reviewerResponse, 0, len(reviewers))
	for _, rev := range reviewers {
		out = append(out, newReviewerResponse(rev, ""))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"reviewers": out})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reviewerID, err := id.ParseReviewerID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	reviewer, err := h.reviewers.Get(ctx, reviewerID)
	if err != nil {
		h.logError(ctx, "failed to get reviewer", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newReviewerResponse(reviewer, ""))
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reviewerID, err := id.ParseReviewerID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	reviewer, err := h.reviewers.Deactivate(ctx, reviewerID)
	if err != nil {
		h.logError(ctx, "failed to deactivate reviewer", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newReviewerResponse(reviewer, ""))
}

func (h *Handler) handleRotateSecret(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reviewerID, err := id.ParseReviewerID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	reviewer, secret, err := h.reviewers.RotateSecret(ctx, reviewerID)
	if err != nil {
		h.logError(ctx, "failed to rotate reviewer secret", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newReviewerResponse(reviewer, secret))
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		return
	}
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
}
