package reviewer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"capture-gateway/internal/reviewer/models"
	id "capture-gateway/pkg/domain"
	"capture-gateway/pkg/platform/sentinel"
)

// PostgresStore persists reviewer accounts in the reviewers table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, reviewer *models.Reviewer) error {
	query := `
		INSERT INTO reviewers (id, email, display_name, role, active, secret_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(reviewer.ID),
		reviewer.Email,
		reviewer.DisplayName,
		string(reviewer.Role),
		reviewer.Active,
		reviewer.SecretHash,
		reviewer.CreatedAt,
		reviewer.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("email %s already registered: %w", reviewer.Email, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert reviewer: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, reviewerID id.ReviewerID) (*models.Reviewer, error) {
	query := `
		SELECT id, email, display_name, role, active, secret_hash, created_at, updated_at
		FROM reviewers
		WHERE id = $1
	`
	return scanReviewer(s.db.QueryRowContext(ctx, query, uuid.UUID(reviewerID)))
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*models.Reviewer, error) {
	query := `
		SELECT id, email, display_name, role, active, secret_hash, created_at, updated_at
		FROM reviewers
		WHERE email = $1
	`
	return scanReviewer(s.db.QueryRowContext(ctx, query, email))
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Reviewer, error) {
	query := `
		SELECT id, email, display_name, role, active, secret_hash, created_at, updated_at
		FROM reviewers
		ORDER BY email ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list reviewers: %w", err)
	}
	defer rows.Close()

	var out []*models.Reviewer
	for rows.Next() {
		r, err := scanReviewerRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviewers: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, reviewer *models.Reviewer) error {
	query := `
		UPDATE reviewers
		SET display_name = $2, role = $3, active = $4, secret_hash = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(reviewer.ID),
		reviewer.DisplayName,
		string(reviewer.Role),
		reviewer.Active,
		reviewer.SecretHash,
		reviewer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update reviewer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update reviewer: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("reviewer %s: %w", reviewer.ID, sentinel.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReviewer(row *sql.Row) (*models.Reviewer, error) {
	r, err := scanReviewerRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

func scanReviewerRow(row rowScanner) (*models.Reviewer, error) {
	var (
		r          models.Reviewer
		reviewerID uuid.UUID
		role       string
	)
	err := row.Scan(&reviewerID, &r.Email, &r.DisplayName, &role, &r.Active, &r.SecretHash, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan reviewer: %w", err)
	}
	r.ID = id.ReviewerID(reviewerID)
	r.Role = models.Role(role)
	return &r, nil
}
