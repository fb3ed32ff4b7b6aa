package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yiba-it/postir/internal/db"
	"github.com/yiba-it/postir/internal/models"
)

// PaymentRepository records plan purchases.
type PaymentRepository interface {
	Create(ctx context.Context, payment models.Payment) error
	ListForUser(ctx context.Context, userID string, limit int) ([]models.Payment, error)
}

// PostgresPaymentRepository provides PostgreSQL-backed persistence for payments.
type PostgresPaymentRepository struct {
	pool db.Pool
}

// NewPostgresPaymentRepository constructs a payment repository backed by PostgreSQL.
func NewPostgresPaymentRepository(pool db.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{pool: pool}
}

// Create persists a payment record.
func (r *PostgresPaymentRepository) Create(ctx context.Context, payment models.Payment) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO payments (id, user_id, plan, amount_sar, status, intent_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, payment.ID, payment.UserID, payment.Plan, payment.AmountSAR, payment.Status, payment.IntentID, payment.CreatedAt)
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
		return fmt.Errorf("insert payment: %w", err)
	}

	return nil
}

// ListForUser returns the most recent payments for a user, newest first.
func (r *PostgresPaymentRepository) ListForUser(ctx context.Context, userID string, limit int) ([]models.Payment, error) {
	if limit <= 0 {
		limit = 5
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, user_id, plan, amount_sar, status, intent_id, created_at
        FROM payments
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.UserID, &p.Plan, &p.AmountSAR, &p.Status, &p.IntentID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}

	return payments, nil
}

var _ PaymentRepository = (*PostgresPaymentRepository)(nil)
