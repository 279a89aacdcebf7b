package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeparity/internal/port/outbound"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInvalidArgument is returned for nil or out-of-range repository inputs.
var ErrInvalidArgument = errors.New("invalid argument")

// PostgreSQLComparisonRecordRepository implements the
// ComparisonRecordRepository interface on a pgx pool.
type PostgreSQLComparisonRecordRepository struct {
	pool *pgxpool.Pool
}

// NewPostgreSQLComparisonRecordRepository creates a new PostgreSQL comparison
// record repository.
func NewPostgreSQLComparisonRecordRepository(pool *pgxpool.Pool) *PostgreSQLComparisonRecordRepository {
	return &PostgreSQLComparisonRecordRepository{
		pool: pool,
	}
}

// Save persists a comparison outcome.
func (r *PostgreSQLComparisonRecordRepository) Save(ctx context.Context, record outbound.ComparisonRecord) error {
	if record.ID == uuid.Nil {
		return ErrInvalidArgument
	}

	query := `
		INSERT INTO codeparity.comparison_records (
			id, language, equal, difference_count,
			fallback_used, duration_ms, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)`

	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.Language,
		record.Equal,
		record.DifferenceCount,
		record.FallbackUsed,
		record.Duration.Milliseconds(),
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save comparison record: %w", err)
	}

	return nil
}

// FindRecentByLanguage returns the most recent records for a language,
// newest first.
func (r *PostgreSQLComparisonRecordRepository) FindRecentByLanguage(
	ctx context.Context,
	language string,
	limit int,
) ([]outbound.ComparisonRecord, error) {
	if language == "" || limit <= 0 {
		return nil, ErrInvalidArgument
	}

	query := `
		SELECT id, language, equal, difference_count,
			   fallback_used, duration_ms, created_at
		FROM codeparity.comparison_records
		WHERE language = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, language, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparison records: %w", err)
	}
	defer rows.Close()

	var records []outbound.ComparisonRecord
	for rows.Next() {
		var record outbound.ComparisonRecord
		var durationMs int64

		if scanErr := rows.Scan(
			&record.ID,
			&record.Language,
			&record.Equal,
			&record.DifferenceCount,
			&record.FallbackUsed,
			&durationMs,
			&record.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan comparison record: %w", scanErr)
		}

		record.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to read comparison records: %w", rowsErr)
	}

	return records, nil
}
