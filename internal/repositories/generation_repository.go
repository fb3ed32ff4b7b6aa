package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yiba-it/postir/internal/db"
	"github.com/yiba-it/postir/internal/models"
)

// GenerationRepository records billed generations for usage history.
type GenerationRepository interface {
	Log(ctx context.Context, generation models.Generation) error
	ListForUser(ctx context.Context, userID string, limit int) ([]models.Generation, error)
}

// PostgresGenerationRepository provides PostgreSQL-backed persistence for the
// generation log.
type PostgresGenerationRepository struct {
	pool db.Pool
}

// NewPostgresGenerationRepository constructs a generation repository backed by PostgreSQL.
func NewPostgresGenerationRepository(pool db.Pool) *PostgresGenerationRepository {
	return &PostgresGenerationRepository{pool: pool}
}

// Log persists a generation record.
func (r *PostgresGenerationRepository) Log(ctx context.Context, generation models.Generation) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO generations (id, user_id, type, platform, business_name, prompt_summary, tokens_consumed, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, generation.ID, generation.UserID, generation.Type, generation.Platform,
		generation.BusinessName, generation.PromptSummary, generation.TokensConsumed, generation.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert generation: %w", err)
	}

	return nil
}

// ListForUser returns the most recent generations for a user, newest first.
func (r *PostgresGenerationRepository) ListForUser(ctx context.Context, userID string, limit int) ([]models.Generation, error) {
	if limit <= 0 {
		limit = 20
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, user_id, type, platform, business_name, prompt_summary, tokens_consumed, created_at
        FROM generations
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	defer rows.Close()

	var generations []models.Generation
	for rows.Next() {
		var g models.Generation
		if err := rows.Scan(&g.ID, &g.UserID, &g.Type, &g.Platform, &g.BusinessName, &g.PromptSummary, &g.TokensConsumed, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		generations = append(generations, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generations: %w", err)
	}

	return generations, nil
}

var _ GenerationRepository = (*PostgresGenerationRepository)(nil)
