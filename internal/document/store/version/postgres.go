package version

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"capture-gateway/internal/document/models"
	txcontext "capture-gateway/pkg/platform/tx"
)

// PostgresStore persists version chains in the document_versions table.
// Version numbers are assigned inside the insert so concurrent saves of the
// same document cannot race to the same number.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// querier returns the ambient transaction when one is carried in ctx so
// ingest pipelines can batch a version write with their own bookkeeping.
func (s *PostgresStore) querier(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, version *models.DocumentVersion) (*models.DocumentVersion, error) {
	query := `
		INSERT INTO document_versions (din, upload_id, version, payload, exceptions, source, created_at, created_by)
		VALUES (
			$1, $2,
			(SELECT COALESCE(MAX(version), 0) + 1 FROM document_versions WHERE din = $1),
			$3, $4, $5, $6, $7
		)
		RETURNING version
	`
	stored := *version
	err := s.querier(ctx).QueryRowContext(ctx, query,
		version.DIN,
		version.UploadID,
		[]byte(version.Payload),
		nullableJSON(version.Exceptions),
		string(version.Source),
		version.CreatedAt,
		version.CreatedBy,
	).Scan(&stored.Version)
	if err != nil {
		return nil, fmt.Errorf("insert document version: %w", err)
	}
	return &stored, nil
}

func (s *PostgresStore) Get(ctx context.Context, din string, version int) (*models.DocumentVersion, error) {
	query := `
		SELECT din, upload_id, version, payload, exceptions, source, created_at, created_by
		FROM document_versions
		WHERE din = $1 AND version = $2
	`
	return s.scanOne(s.querier(ctx).QueryRowContext(ctx, query, din, version))
}

func (s *PostgresStore) Latest(ctx context.Context, din string) (*models.DocumentVersion, error) {
	query := `
		SELECT din, upload_id, version, payload, exceptions, source, created_at, created_by
		FROM document_versions
		WHERE din = $1
		ORDER BY version DESC
		LIMIT 1
	`
	return s.scanOne(s.querier(ctx).QueryRowContext(ctx, query, din))
}

func (s *PostgresStore) List(ctx context.Context, din string) ([]*models.DocumentVersion, error) {
	query := `
		SELECT din, upload_id, version, payload, exceptions, source, created_at, created_by
		FROM document_versions
		WHERE din = $1
		ORDER BY version ASC
	`
	rows, err := s.querier(ctx).QueryContext(ctx, query, din)
	if err != nil {
		return nil, fmt.Errorf("list document versions: %w", err)
	}
	defer rows.Close()

	var out []*models.DocumentVersion
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document versions: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanOne(row *sql.Row) (*models.DocumentVersion, error) {
	v, err := scanVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

func scanVersion(row rowScanner) (*models.DocumentVersion, error) {
	var (
		v          models.DocumentVersion
		exceptions sql.Null[[]byte]
		source     string
	)
	err := row.Scan(&v.DIN, &v.UploadID, &v.Version, (*[]byte)(&v.Payload), &exceptions, &source, &v.CreatedAt, &v.CreatedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan document version: %w", err)
	}
	if exceptions.Valid {
		v.Exceptions = exceptions.V
	}
	v.Source = models.VersionSource(source)
	return &v, nil
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
