// Package service implements the document review operations: load, edit,
// save, compare, and exception reporting over the versioned wire channels.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"capture-gateway/internal/document/metrics"
	"capture-gateway/internal/document/models"
	"capture-gateway/internal/document/ports"
	"capture-gateway/internal/ixsd"
	"capture-gateway/internal/platform/middleware"
	dErrors "capture-gateway/pkg/domain-errors"
	"capture-gateway/pkg/platform/audit"
)

// Type aliases for shared interfaces.
type (
	Store          = ports.VersionStore
	Cache          = ports.SnapshotCache
	AuditPublisher = ports.AuditPublisher
)

// Snapshot is a parsed document version ready for the review UI.
type Snapshot struct {
	DIN       string
	UploadID  string
	Version   int
	Source    models.VersionSource
	Status    models.DocumentStatus
	CreatedAt time.Time
	Headers   []ixsd.Header
}

type Service struct {
	store          Store
	cache          Cache
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithCache(cache Cache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("version store is required")
	}

	svc := &Service{
		store:  store,
		tracer: otel.Tracer("capture-gateway/document"),
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// Ingest stores the extraction pipeline's output as the first version of a
// document, or a re-extraction as a later one.
func (s *Service) Ingest(ctx context.Context, din, uploadID string, payload, exceptions json.RawMessage) (*models.DocumentVersion, error) {
	ctx, span := s.tracer.Start(ctx, "document.Ingest",
		trace.WithAttributes(attribute.String("document.din", din)))
	defer span.End()

	version, err := models.NewDocumentVersion(din, uploadID, payload, exceptions, models.SourceExtraction, "")
	if err != nil {
		return nil, err
	}

	stored, err := s.store.Append(ctx, version)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store document version")
	}
	if s.cache != nil {
		s.cache.Set(ctx, stored)
	}
	if s.metrics != nil {
		s.metrics.IncrementVersionSaved()
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventVersionSaved, audit.Event{
		DocumentID: stored.DIN,
		UploadID:   stored.UploadID,
		Version:    stored.Version,
		Reason:     string(models.SourceExtraction),
	})
	return stored, nil
}

// Load fetches the latest version of a document and parses both channels into
// the form model.
func (s *Service) Load(ctx context.Context, din string) (*Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "document.Load",
		trace.WithAttributes(attribute.String("document.din", din)))
	defer span.End()

	if din == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "din is required")
	}

	version, err := s.store.Latest(ctx, din)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	if version == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
	}
	if s.cache != nil {
		s.cache.Set(ctx, version)
	}

	snapshot := s.parseVersion(version)

	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventDocumentLoaded, audit.Event{
		ActorID:    middleware.GetReviewerID(ctx),
		DocumentID: version.DIN,
		UploadID:   version.UploadID,
		Version:    version.Version,
	})
	return snapshot, nil
}

// LoadVersion fetches one specific version, consulting the snapshot cache first.
func (s *Service) LoadVersion(ctx context.Context, din string, versionNum int) (*Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "document.LoadVersion",
		trace.WithAttributes(
			attribute.String("document.din", din),
			attribute.Int("document.version", versionNum),
		))
	defer span.End()

	version, err := s.fetchVersion(ctx, din, versionNum)
	if err != nil {
		return nil, err
	}
	return s.parseVersion(version), nil
}

// SaveDraft reconstructs both wire channels from the edited model and appends
// them as a new reviewer version. Row states and change flags survive the
// round trip; only a reload replaces the editing model.
func (s *Service) SaveDraft(ctx context.Context, din string, headers []ixsd.Header, actor string) (*models.DocumentVersion, error) {
	ctx, span := s.tracer.Start(ctx, "document.SaveDraft",
		trace.WithAttributes(attribute.String("document.din", din)))
	defer span.End()

	if din == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "din is required")
	}

	latest, err := s.store.Latest(ctx, din)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	if latest == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
	}

	payload, err := json.Marshal(ixsd.DataJSON(headers))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode document payload")
	}
	var exceptions json.RawMessage
	if exc := ixsd.ExceptionJSON(headers); len(exc) > 0 {
		exceptions, err = json.Marshal(exc)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode exception payload")
		}
	}

	version, err := models.NewDocumentVersion(din, latest.UploadID, payload, exceptions, models.SourceReviewer, actor)
	if err != nil {
		return nil, err
	}

	stored, err := s.store.Append(ctx, version)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store document version")
	}
	if s.cache != nil {
		s.cache.Set(ctx, stored)
	}
	if s.metrics != nil {
		s.metrics.IncrementVersionSaved()
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventVersionSaved, audit.Event{
		ActorID:    actor,
		DocumentID: stored.DIN,
		UploadID:   stored.UploadID,
		Version:    stored.Version,
		Reason:     string(models.SourceReviewer),
	})
	return stored, nil
}

// AddLineItem appends a new blank row to an array header.
func (s *Service) AddLineItem(headers []ixsd.Header, headerIdx int) []ixsd.Header {
	if s.metrics != nil {
		s.metrics.IncrementRowOp("add_row")
	}
	return ixsd.AddRow(headers, headerIdx)
}

// DeleteLineItem tombstones a row.
func (s *Service) DeleteLineItem(headers []ixsd.Header, headerIdx, rowIdx int) []ixsd.Header {
	if s.metrics != nil {
		s.metrics.IncrementRowOp("delete_row")
	}
	return ixsd.DeleteRow(headers, headerIdx, rowIdx)
}

// UpdateField sets a field value, honoring the core's read-only and
// missing-target no-op rules.
func (s *Service) UpdateField(headers []ixsd.Header, headerIdx, rowIdx int, fieldKey string, newValue any) []ixsd.Header {
	if s.metrics != nil {
		s.metrics.IncrementRowOp("update_field")
	}
	return ixsd.UpdateFieldValue(headers, headerIdx, rowIdx, fieldKey, newValue)
}

// History lists version metadata for a document, oldest first. Channel bodies
// are omitted; callers load a version explicitly when they need its content.
func (s *Service) History(ctx context.Context, din string) ([]*models.DocumentVersion, error) {
	ctx, span := s.tracer.Start(ctx, "document.History",
		trace.WithAttributes(attribute.String("document.din", din)))
	defer span.End()

	if din == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "din is required")
	}
	versions, err := s.store.List(ctx, din)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list document versions")
	}
	if len(versions) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
	}
	for _, v := range versions {
		v.Payload = nil
		v.Exceptions = nil
	}
	return versions, nil
}

// Compare fetches two versions concurrently, parses both, and diffs them.
func (s *Service) Compare(ctx context.Context, din string, fromVersion, toVersion int) ([]ixsd.HeaderDiff, error) {
	ctx, span := s.tracer.Start(ctx, "document.Compare",
		trace.WithAttributes(
			attribute.String("document.din", din),
			attribute.Int("document.from_version", fromVersion),
			attribute.Int("document.to_version", toVersion),
		))
	defer span.End()

	if din == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "din is required")
	}
	if fromVersion < 1 || toVersion < 1 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "from and to versions are required")
	}

	start := time.Now()
	var from, to *models.DocumentVersion
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.fetchVersion(gctx, din, fromVersion)
		from = v
		return err
	})
	g.Go(func() error {
		v, err := s.fetchVersion(gctx, din, toVersion)
		to = v
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	left := s.parseVersion(from)
	right := s.parseVersion(to)
	diffs := ixsd.Compare(left.Headers, right.Headers)

	if s.metrics != nil {
		s.metrics.ObserveCompare(start)
	}
	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventVersionsCompared, audit.Event{
		ActorID:    middleware.GetReviewerID(ctx),
		DocumentID: din,
		Version:    toVersion,
		Reason:     fmt.Sprintf("compared against version %d", fromVersion),
	})
	return diffs, nil
}

// Exceptions flattens the latest version's exception entries. Deleted-row
// entries are included only when includeDeleted is set. When any entry has
// error severity an audit event marks the document as exception-flagged.
func (s *Service) Exceptions(ctx context.Context, din string, includeDeleted bool) ([]ixsd.ExceptionRecord, error) {
	ctx, span := s.tracer.Start(ctx, "document.Exceptions",
		trace.WithAttributes(attribute.String("document.din", din)))
	defer span.End()

	if din == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "din is required")
	}
	version, err := s.store.Latest(ctx, din)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	if version == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
	}

	snapshot := s.parseVersion(version)
	filter := ixsd.ActiveRows
	if includeDeleted {
		filter = ixsd.AllRows
	}
	records := ixsd.CollectExceptions(snapshot.Headers, filter)

	for _, rec := range records {
		if rec.Severity == ixsd.SeverityError {
			ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.EventExceptionsFlagged, audit.Event{
				ActorID:    middleware.GetReviewerID(ctx),
				DocumentID: version.DIN,
				UploadID:   version.UploadID,
				Version:    version.Version,
			})
			break
		}
	}
	return records, nil
}

// fetchVersion resolves one version through the cache, falling back to the store.
func (s *Service) fetchVersion(ctx context.Context, din string, versionNum int) (*models.DocumentVersion, error) {
	if din == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "din is required")
	}
	if s.cache != nil {
		if v, ok := s.cache.Get(ctx, din, versionNum); ok {
			if s.metrics != nil {
				s.metrics.IncrementCache(true)
			}
			return v, nil
		}
		if s.metrics != nil {
			s.metrics.IncrementCache(false)
		}
	}

	version, err := s.store.Get(ctx, din, versionNum)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document version")
	}
	if version == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("version %d not found", versionNum))
	}
	if s.cache != nil {
		s.cache.Set(ctx, version)
	}
	return version, nil
}

// parseVersion decodes both channels into the form model. Malformed channels
// degrade to an empty model per the core's rules; the metric flags them.
func (s *Service) parseVersion(version *models.DocumentVersion) *Snapshot {
	var payload, exceptions any
	if len(version.Payload) > 0 {
		payload = string(version.Payload)
	}
	if len(version.Exceptions) > 0 {
		exceptions = string(version.Exceptions)
	}
	headers := ixsd.Parse(payload, exceptions)
	if s.metrics != nil {
		s.metrics.IncrementParse(len(headers) == 0)
	}
	return &Snapshot{
		DIN:       version.DIN,
		UploadID:  version.UploadID,
		Version:   version.Version,
		Source:    version.Source,
		Status:    version.Status(),
		CreatedAt: version.CreatedAt,
		Headers:   headers,
	}
}
