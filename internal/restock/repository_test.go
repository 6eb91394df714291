package restock

import (
	"context"
	"errors"
	"testing"

	"sportshop-be/internal/product"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestRepository_Subscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`INSERT INTO restock_subscriptions \(product_id, email\) VALUES \(\$1, \$2\) ON CONFLICT`).
			WithArgs(int64(3), "fan@example.com").
			WillReturnResult(sqlmock.NewResult(1, 1))

		assert.NoError(t, repo.Subscribe(ctx, 3, "fan@example.com"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownProduct", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`INSERT INTO restock_subscriptions`).
			WillReturnError(&pq.Error{Code: fkViolation})

		assert.ErrorIs(t, repo.Subscribe(ctx, 99, "fan@example.com"), product.ErrNotFound)
	})

	t.Run("DBError", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`INSERT INTO restock_subscriptions`).
			WillReturnError(errors.New("db down"))

		assert.EqualError(t, repo.Subscribe(ctx, 3, "fan@example.com"), "db down")
	})
}

func TestRepository_ListEmails(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT email FROM restock_subscriptions WHERE product_id = \$1 ORDER BY id`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow("a@x.io").AddRow("b@x.io"))

	emails, err := repo.ListEmails(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.io", "b@x.io"}, emails)
}

func TestRepository_Clear(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`DELETE FROM restock_subscriptions WHERE product_id = \$1 AND email = ANY\(\$2\)`).
		WithArgs(int64(3), pq.Array([]string{"a@x.io"})).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Clear(context.Background(), 3, []string{"a@x.io"}))
	require.NoError(t, repo.Clear(context.Background(), 3, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
