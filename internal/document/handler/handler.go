// Package handler exposes the document review surface over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"capture-gateway/internal/document/models"
	"capture-gateway/internal/document/service"
	"capture-gateway/internal/ixsd"
	"capture-gateway/internal/platform/metrics"
	"capture-gateway/internal/platform/middleware"
	dErrors "capture-gateway/pkg/domain-errors"
	"capture-gateway/pkg/platform/httputil"
)

const timeFormat = time.RFC3339Nano

// Service defines the document operations the handler depends on.
type Service interface {
	Ingest(ctx context.Context, din, uploadID string, payload, exceptions json.RawMessage) (*models.DocumentVersion, error)
	Load(ctx context.Context, din string) (*service.Snapshot, error)
	LoadVersion(ctx context.Context, din string, version int) (*service.Snapshot, error)
	SaveDraft(ctx context.Context, din string, headers []ixsd.Header, actor string) (*models.DocumentVersion, error)
	AddLineItem(headers []ixsd.Header, headerIdx int) []ixsd.Header
	DeleteLineItem(headers []ixsd.Header, headerIdx, rowIdx int) []ixsd.Header
	UpdateField(headers []ixsd.Header, headerIdx, rowIdx int, fieldKey string, newValue any) []ixsd.Header
	History(ctx context.Context, din string) ([]*models.DocumentVersion, error)
	Compare(ctx context.Context, din string, fromVersion, toVersion int) ([]ixsd.HeaderDiff, error)
	Exceptions(ctx context.Context, din string, includeDeleted bool) ([]ixsd.ExceptionRecord, error)
}

// Handler handles document endpoints.
type Handler struct {
	logger       *slog.Logger
	documents    Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new document Handler.
func New(
	documents Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		documents:    documents,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the document routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	docRouter := chi.NewRouter()
	docRouter.Use(middleware.Recovery(h.logger))
	docRouter.Use(middleware.RequestID)
	docRouter.Use(middleware.ClientMetadata)
	docRouter.Use(middleware.Logger(h.logger))
	docRouter.Use(middleware.Timeout(30 * time.Second))
	docRouter.Use(middleware.ContentTypeJSON)
	docRouter.Use(middleware.LatencyMiddleware(h.metrics))
	docRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

	docRouter.Route("/{din}", func(r chi.Router) {
		r.Post("/", h.handleIngest)
		r.Get("/", h.handleLoad)
		r.Get("/versions", h.handleHistory)
		r.Post("/versions", h.handleSaveDraft)
		r.Get("/versions/{version}", h.handleLoadVersion)
		r.Get("/compare", h.handleCompare)
		r.Get("/exceptions", h.handleExceptions)
		r.Post("/headers/{header}/rows", h.handleAddRow)
		r.Delete("/headers/{header}/rows/{row}", h.handleDeleteRow)
		r.Patch("/headers/{header}/rows/{row}/fields/{field}", h.handleUpdateField)
	})

	r.Mount("/documents", docRouter)
}

// handleIngest stores the extraction pipeline's channels as a new version.
func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	din := chi.URLParam(r, "din")

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid ingest request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	stored, err := h.documents.Ingest(ctx, din, req.UploadID, req.Data, req.Exceptions)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to ingest document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, newVersionResponse(stored))
}

// handleLoad returns the latest version with both wire channels.
func (h *Handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snapshot, err := h.documents.Load(ctx, chi.URLParam(r, "din"))
	if err != nil {
		h.writeServiceError(ctx, w, "failed to load document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newSnapshotResponse(snapshot))
}

// handleLoadVersion returns one specific version.
func (h *Handler) handleLoadVersion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	versionNum, err := strconv.Atoi(chi.URLParam(r, "version"))
	if err != nil || versionNum < 1 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "version must be a positive integer"))
		return
	}

	snapshot, err := h.documents.LoadVersion(ctx, chi.URLParam(r, "din"), versionNum)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to load document version", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newSnapshotResponse(snapshot))
}

// handleHistory lists version metadata for a document.
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	versions, err := h.documents.History(ctx, chi.URLParam(r, "din"))
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list versions", err)
		return
	}
	out := make([]versionResponse, 0, len(versions))
	for _, v := range versions {
		out = append(out, newVersionResponse(v))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"versions": out})
}

// handleSaveDraft persists the caller-held channels as a new reviewer version.
func (h *Handler) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req saveDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if len(req.Data) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "data channel is required"))
		return
	}

	headers := parseChannels(req.Data, req.Exceptions)
	stored, err := h.documents.SaveDraft(ctx, chi.URLParam(r, "din"), headers, middleware.GetReviewerID(ctx))
	if err != nil {
		h.writeServiceError(ctx, w, "failed to save draft", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, newVersionResponse(stored))
}

// handleAddRow appends a blank row to the named header.
func (h *Handler) handleAddRow(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	headers := parseChannels(req.Data, req.Exceptions)
	idx := headerIndexByName(headers, chi.URLParam(r, "header"))
	if idx < 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "header not found"))
		return
	}

	updated := h.documents.AddLineItem(headers, idx)
	httputil.WriteJSON(w, http.StatusOK, newChannelsResponse(updated))
}

// handleDeleteRow tombstones one row of the named header.
func (h *Handler) handleDeleteRow(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	rowIdx, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil || rowIdx < 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "row must be a non-negative integer"))
		return
	}

	headers := parseChannels(req.Data, req.Exceptions)
	idx := headerIndexByName(headers, chi.URLParam(r, "header"))
	if idx < 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "header not found"))
		return
	}

	updated := h.documents.DeleteLineItem(headers, idx, rowIdx)
	httputil.WriteJSON(w, http.StatusOK, newChannelsResponse(updated))
}

// handleUpdateField sets one field's value. Read-only fields and missing
// targets leave the channels unchanged.
func (h *Handler) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	var req updateFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	rowIdx, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil || rowIdx < 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "row must be a non-negative integer"))
		return
	}

	headers := parseChannels(req.Data, req.Exceptions)
	idx := headerIndexByName(headers, chi.URLParam(r, "header"))
	if idx < 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "header not found"))
		return
	}

	updated := h.documents.UpdateField(headers, idx, rowIdx, chi.URLParam(r, "field"), req.Value)
	httputil.WriteJSON(w, http.StatusOK, newChannelsResponse(updated))
}

// handleCompare diffs two versions of a document.
func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	from, errFrom := strconv.Atoi(r.URL.Query().Get("from"))
	to, errTo := strconv.Atoi(r.URL.Query().Get("to"))
	if errFrom != nil || errTo != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "from and to query parameters are required"))
		return
	}

	diffs, err := h.documents.Compare(ctx, chi.URLParam(r, "din"), from, to)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to compare versions", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"from":    from,
		"to":      to,
		"headers": newCompareResponse(diffs),
	})
}

// handleExceptions returns the flattened exception list for the latest version.
func (h *Handler) handleExceptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	includeDeleted := r.URL.Query().Get("includeDeleted") == "true"

	records, err := h.documents.Exceptions(ctx, chi.URLParam(r, "din"), includeDeleted)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to collect exceptions", err)
		return
	}
	if records == nil {
		records = []ixsd.ExceptionRecord{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"exceptions": records})
}

// writeServiceError logs and renders a service failure, collapsing unexpected
// errors to an opaque internal envelope.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal:
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	default:
		h.logger.WarnContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}

func parseChannels(data, exceptions json.RawMessage) []ixsd.Header {
	var dataCh, excCh any
	if len(data) > 0 {
		dataCh = string(data)
	}
	if len(exceptions) > 0 {
		excCh = string(exceptions)
	}
	return ixsd.Parse(dataCh, excCh)
}

func headerIndexByName(headers []ixsd.Header, name string) int {
	for i := range headers {
		if headers[i].Name == name {
			return i
		}
	}
	return -1
}
