package restock

import (
	"context"
	"database/sql"
	"errors"

	"sportshop-be/internal/logger"
	"sportshop-be/internal/product"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const fkViolation = "23503"

type Repository interface {
	// Subscribe is idempotent per (product, email).
	Subscribe(ctx context.Context, productID int64, email string) error
	ListEmails(ctx context.Context, productID int64) ([]string, error)
	// Clear drops the given subscriptions once they have been served.
	Clear(ctx context.Context, productID int64, emails []string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Subscribe(ctx context.Context, productID int64, email string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO restock_subscriptions (product_id, email)
		VALUES ($1, $2)
		ON CONFLICT (product_id, email) DO NOTHING
	`, productID, email)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == fkViolation {
		return product.ErrNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to subscribe",
			zap.String("layer", "repository"),
			zap.Int64("product_id", productID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *repository) ListEmails(ctx context.Context, productID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT email FROM restock_subscriptions
		WHERE product_id = $1
		ORDER BY id
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emails := make([]string, 0)
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}

func (r *repository) Clear(ctx context.Context, productID int64, emails []string) error {
	if len(emails) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM restock_subscriptions
		WHERE product_id = $1 AND email = ANY($2)
	`, productID, pq.Array(emails))
	return err
}
