package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yiba-it/postir/internal/db"
	"github.com/yiba-it/postir/internal/models"
)

// ProfileRepository defines the data access contract for plan and token accounting.
type ProfileRepository interface {
	Create(ctx context.Context, profile models.Profile) error
	FindByUserID(ctx context.Context, userID string) (models.Profile, error)
	// ConsumeTokens atomically adds amount to tokens_used and returns the
	// updated profile, so callers never compute balances from stale reads.
	ConsumeTokens(ctx context.Context, userID string, amount int) (models.Profile, error)
	// ApplyPlan replaces the plan and resets token accounting after a purchase.
	ApplyPlan(ctx context.Context, userID, plan string, tokensTotal int, expiresAt *time.Time) error
}

// PostgresProfileRepository provides PostgreSQL-backed persistence for profiles.
type PostgresProfileRepository struct {
	pool db.Pool
}

// NewPostgresProfileRepository constructs a profile repository backed by PostgreSQL.
func NewPostgresProfileRepository(pool db.Pool) *PostgresProfileRepository {
	return &PostgresProfileRepository{pool: pool}
}

// Create persists a new profile record.
func (r *PostgresProfileRepository) Create(ctx context.Context, profile models.Profile) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO profiles (user_id, email, plan, tokens_total, tokens_used, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, profile.UserID, profile.Email, profile.Plan, profile.TokensTotal, profile.TokensUsed, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert profile: %w", err)
	}

	return nil
}

// FindByUserID fetches the profile belonging to a user.
func (r *PostgresProfileRepository) FindByUserID(ctx context.Context, userID string) (models.Profile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Profile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT user_id, email, plan, tokens_total, tokens_used, plan_started_at, plan_expires_at, created_at, updated_at
        FROM profiles
        WHERE user_id = $1
    `, userID)

	return scanProfile(row)
}

// ConsumeTokens increments tokens_used and returns the authoritative row.
func (r *PostgresProfileRepository) ConsumeTokens(ctx context.Context, userID string, amount int) (models.Profile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Profile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        UPDATE profiles
        SET tokens_used = tokens_used + $2, updated_at = NOW()
        WHERE user_id = $1
        RETURNING user_id, email, plan, tokens_total, tokens_used, plan_started_at, plan_expires_at, created_at, updated_at
    `, userID, amount)

	return scanProfile(row)
}

// ApplyPlan replaces the plan, grants a fresh token allotment, and stamps the
// plan window.
func (r *PostgresProfileRepository) ApplyPlan(ctx context.Context, userID, plan string, tokensTotal int, expiresAt *time.Time) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	expires := sql.NullTime{}
	if expiresAt != nil {
		expires = sql.NullTime{Valid: true, Time: expiresAt.UTC()}
	}

	tag, err := conn.Exec(ctx, `
        UPDATE profiles
        SET plan = $2,
            tokens_total = $3,
            tokens_used = 0,
            plan_started_at = NOW(),
            plan_expires_at = $4,
            updated_at = NOW()
        WHERE user_id = $1
    `, userID, plan, tokensTotal, expires)
	if err != nil {
		return fmt.Errorf("update profile plan: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanProfile(row pgx.Row) (models.Profile, error) {
	var (
		profile   models.Profile
		startedAt sql.NullTime
		expiresAt sql.NullTime
	)

	err := row.Scan(
		&profile.UserID, &profile.Email, &profile.Plan,
		&profile.TokensTotal, &profile.TokensUsed,
		&startedAt, &expiresAt,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Profile{}, ErrNotFound
		}
		return models.Profile{}, fmt.Errorf("select profile: %w", err)
	}

	if startedAt.Valid {
		t := startedAt.Time.UTC()
		profile.PlanStartedAt = &t
	}
	if expiresAt.Valid {
		t := expiresAt.Time.UTC()
		profile.PlanExpiresAt = &t
	}

	return profile, nil
}

var _ ProfileRepository = (*PostgresProfileRepository)(nil)
