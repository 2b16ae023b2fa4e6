// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rovshanmuradov/token-launcher/internal/storage"
	"github.com/rovshanmuradov/token-launcher/internal/storage/models"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS submissions (
	signature      VARCHAR(88) PRIMARY KEY,
	network        VARCHAR(32) NOT NULL,
	operation      VARCHAR(32) NOT NULL,
	wallet_address VARCHAR(44) NOT NULL,
	mint           VARCHAR(44) NOT NULL DEFAULT '',
	metadata_uri   TEXT NOT NULL DEFAULT '',
	status         VARCHAR(20) NOT NULL,
	error_message  TEXT NOT NULL DEFAULT '',
	slot           BIGINT NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS submissions_status_idx ON submissions (status, created_at);
`

const columns = `signature, network, operation, wallet_address, mint, metadata_uri, status, error_message, slot, created_at, updated_at`

// Store is a storage.Journal backed by PostgreSQL.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewStore connects to dsn and applies the schema.
func NewStore(ctx context.Context, dsn string, logger *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{pool: pool, logger: logger.Named("journal")}
	if err := s.RunMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// RunMigrations creates the submissions table when missing.
func (s *Store) RunMigrations(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate journal schema: %w", err)
	}
	s.logger.Debug("journal schema ready")
	return nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Record(ctx context.Context, sub *models.Submission) error {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO submissions (signature, network, operation, wallet_address, mint, metadata_uri, status, error_message, slot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (signature) DO UPDATE SET
			status = EXCLUDED.status,
			error_message = EXCLUDED.error_message,
			slot = EXCLUDED.slot,
			updated_at = now()
		RETURNING created_at, updated_at`,
		sub.Signature, sub.Network, sub.Operation, sub.WalletAddress, sub.Mint,
		sub.MetadataURI, sub.Status, sub.ErrorMessage, int64(sub.Slot),
	)
	if err := row.Scan(&sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return fmt.Errorf("failed to record submission %s: %w", sub.Signature, err)
	}
	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, signature, status, errorMsg string, slot uint64) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE submissions
		SET status = $2, error_message = $3, slot = CASE WHEN $4 = 0 THEN slot ELSE $4 END, updated_at = now()
		WHERE signature = $1`,
		signature, status, errorMsg, int64(slot),
	)
	if err != nil {
		return fmt.Errorf("failed to update submission %s: %w", signature, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) Get(ctx context.Context, signature string) (*models.Submission, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+columns+` FROM submissions WHERE signature = $1`, signature)
	sub, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission %s: %w", signature, err)
	}
	return sub, nil
}

// ListByStatus returns rows with status, oldest first. limit <= 0 means all.
func (s *Store) ListByStatus(ctx context.Context, status string, limit int) ([]*models.Submission, error) {
	query := `SELECT ` + columns + ` FROM submissions WHERE status = $1 ORDER BY created_at, signature`
	args := []interface{}{status}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Submission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func scanSubmission(row pgx.Row) (*models.Submission, error) {
	var sub models.Submission
	var slot int64
	err := row.Scan(
		&sub.Signature, &sub.Network, &sub.Operation, &sub.WalletAddress, &sub.Mint,
		&sub.MetadataURI, &sub.Status, &sub.ErrorMessage, &slot, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	sub.Slot = uint64(slot)
	return &sub, nil
}

var _ storage.Journal = (*Store)(nil)
