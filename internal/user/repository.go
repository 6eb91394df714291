package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sportshop-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

type Repository interface {
	Create(ctx context.Context, email, password string, role Role) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	SaveConfirmation(ctx context.Context, userID int64, code string, expiresAt time.Time) error
	// Confirm consumes a live code and marks the user confirmed. It reports
	// false when no unconsumed, unexpired code matches.
	Confirm(ctx context.Context, userID int64, code string) (bool, error)
	UpdateProfile(ctx context.Context, input UpdateProfileInput) (*User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const userColumns = `id, email, password, role, confirmed, name, phone, address, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*User, error) {
	var u User
	if err := row.Scan(
		&u.ID, &u.Email, &u.Password, &u.Role, &u.Confirmed,
		&u.Name, &u.Phone, &u.Address, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) Create(ctx context.Context, email, password string, role Role) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	u, err := scanUser(r.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password, role)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns,
		email, password, role,
	))

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return nil, ErrEmailExists
	}
	if err != nil {
		log.Error("db: failed to insert user", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	return u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (r *repository) FindByID(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (r *repository) SaveConfirmation(ctx context.Context, userID int64, code string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO email_confirmations (user_id, code, expires_at)
		VALUES ($1, $2, $3)
	`, userID, code, expiresAt)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to save confirmation code",
			zap.String("layer", "repository"),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
	return err
}

func (r *repository) Confirm(ctx context.Context, userID int64, code string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE email_confirmations
		SET consumed = TRUE
		WHERE user_id = $1 AND code = $2 AND NOT consumed AND expires_at > NOW()
	`, userID, code)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET confirmed = TRUE, updated_at = NOW() WHERE id = $1
	`, userID); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

func (r *repository) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateProfile"),
		zap.Int64("user_id", input.UserID),
	)

	// COALESCE keeps the stored value for nil inputs.
	u, err := scanUser(r.db.QueryRowContext(ctx, `
		UPDATE users
		SET name = COALESCE($2, name),
			phone = COALESCE($3, phone),
			address = COALESCE($4, address),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		input.UserID, input.Name, input.Phone, input.Address,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		log.Error("failed to update profile", zap.Error(err))
		return nil, err
	}

	log.Info("profile updated successfully")
	return u, nil
}
