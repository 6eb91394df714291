package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	orderCols = []string{"id", "user_id", "status", "total", "created_at", "updated_at"}
	lineCols  = []string{"order_id", "position", "product_id", "product_name", "unit_price",
		"discount_percent", "discounted_price", "quantity", "line_total"}
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func sampleDraft() Draft {
	return Draft{
		UserID: 7,
		Total:  dec("317.99"),
		Lines: []Line{
			{ProductID: 1, ProductName: "Ball", UnitPrice: dec("100"), DiscountPercent: 0,
				DiscountedPrice: dec("100"), Quantity: 3, LineTotal: dec("300")},
			{ProductID: 2, ProductName: "Net", UnitPrice: dec("19.99"), DiscountPercent: 10,
				DiscountedPrice: dec("17.99"), Quantity: 1, LineTotal: dec("17.99")},
		},
	}
}

const lockQuery = `SELECT id, stock FROM products WHERE id = ANY\(\$1\) ORDER BY id FOR UPDATE`

func TestRepository_Commit(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		d := sampleDraft()

		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).
			WithArgs(pq.Array([]int64{1, 2})).
			WillReturnRows(sqlmock.NewRows([]string{"id", "stock"}).AddRow(1, 10).AddRow(2, 2))
		mock.ExpectExec(`UPDATE products SET stock = stock - \$1`).
			WithArgs(3, int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE products SET stock = stock - \$1`).
			WithArgs(1, int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO orders \(user_id, total, status\)`).
			WithArgs(int64(7), d.Total, StatusNew).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(42, now, now))
		mock.ExpectExec(`INSERT INTO order_lines`).
			WithArgs(int64(42), 1, int64(1), "Ball", d.Lines[0].UnitPrice, 0,
				d.Lines[0].DiscountedPrice, 3, d.Lines[0].LineTotal).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO order_lines`).
			WithArgs(int64(42), 2, int64(2), "Net", d.Lines[1].UnitPrice, 10,
				d.Lines[1].DiscountedPrice, 1, d.Lines[1].LineTotal).
			WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectCommit()

		o, err := repo.Commit(ctx, d)
		require.NoError(t, err)
		assert.Equal(t, int64(42), o.ID)
		assert.Equal(t, StatusNew, o.Status)
		assert.Equal(t, 2, o.Lines[1].Position)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("StockConsumedConcurrently", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).
			WillReturnRows(sqlmock.NewRows([]string{"id", "stock"}).AddRow(1, 10).AddRow(2, 0))
		mock.ExpectRollback()

		_, err := repo.Commit(ctx, sampleDraft())
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Lines, 1)
		assert.Equal(t, ReasonOutOfStock, verr.Lines[0].Reason)
		assert.Equal(t, "Net", verr.Lines[0].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ProductDeletedConcurrently", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).
			WillReturnRows(sqlmock.NewRows([]string{"id", "stock"}).AddRow(1, 10))
		mock.ExpectRollback()

		_, err := repo.Commit(ctx, sampleDraft())
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, ReasonNotFound, verr.Lines[0].Reason)
		assert.Equal(t, int64(2), verr.Lines[0].ProductID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsertFailureRollsBack", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		cause := errors.New("constraint violation")

		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).
			WillReturnRows(sqlmock.NewRows([]string{"id", "stock"}).AddRow(1, 10).AddRow(2, 2))
		mock.ExpectExec(`UPDATE products`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE products`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO orders`).WillReturnError(cause)
		mock.ExpectRollback()

		_, err := repo.Commit(ctx, sampleDraft())
		assert.ErrorIs(t, err, ErrCommitFailed)
		assert.ErrorIs(t, err, cause)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("BeginFailure", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		_, err := repo.Commit(ctx, sampleDraft())
		assert.ErrorIs(t, err, ErrCommitFailed)
	})

	t.Run("CommitFailure", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockQuery).
			WillReturnRows(sqlmock.NewRows([]string{"id", "stock"}).AddRow(1, 10).AddRow(2, 2))
		mock.ExpectExec(`UPDATE products`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE products`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(42, now, now))
		mock.ExpectExec(`INSERT INTO order_lines`).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO order_lines`).WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

		_, err := repo.Commit(ctx, sampleDraft())
		assert.ErrorIs(t, err, ErrCommitFailed)
	})
}

func TestRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`SELECT id, user_id, status, total, created_at, updated_at FROM orders WHERE id = \$1`).
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows(orderCols).AddRow(42, 7, "NEW", "300.00", now, now))
		mock.ExpectQuery(`SELECT order_id, position, .* FROM order_lines WHERE order_id = ANY\(\$1\)`).
			WithArgs(pq.Array([]int64{42})).
			WillReturnRows(sqlmock.NewRows(lineCols).
				AddRow(42, 1, 1, "Ball", "100.00", 0, "100.00", 3, "300.00"))

		o, err := repo.GetByID(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, StatusNew, o.Status)
		assert.True(t, o.Total.Equal(dec("300")))
		require.Len(t, o.Lines, 1)
		assert.Equal(t, "Ball", o.Lines[0].ProductName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`SELECT .* FROM orders WHERE id = \$1`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(orderCols))

		_, err := repo.GetByID(ctx, 1)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestRepository_ListByUser(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("NewestFirstWithLines", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`SELECT .* FROM orders WHERE user_id = \$1 ORDER BY created_at DESC, id DESC`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(orderCols).
				AddRow(2, 7, "NEW", "10.00", now, now).
				AddRow(1, 7, "DELIVERED", "20.00", now.Add(-time.Hour), now))
		mock.ExpectQuery(`FROM order_lines`).
			WithArgs(pq.Array([]int64{2, 1})).
			WillReturnRows(sqlmock.NewRows(lineCols).
				AddRow(1, 1, 5, "Cone", "20.00", 0, "20.00", 1, "20.00").
				AddRow(2, 1, 6, "Cap", "10.00", 0, "10.00", 1, "10.00"))

		orders, err := repo.ListByUser(ctx, 7)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, int64(2), orders[0].ID)
		assert.Equal(t, "Cap", orders[0].Lines[0].ProductName)
		assert.Equal(t, "Cone", orders[1].Lines[0].ProductName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoOrders", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`SELECT .* FROM orders WHERE user_id = \$1`).
			WithArgs(int64(8)).
			WillReturnRows(sqlmock.NewRows(orderCols))

		orders, err := repo.ListByUser(ctx, 8)
		require.NoError(t, err)
		assert.Empty(t, orders)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`UPDATE orders SET status = \$1, updated_at = NOW\(\) WHERE id = \$2 AND status = \$3`).
			WithArgs(StatusShipped, int64(1), StatusProcessing).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateStatus(ctx, 1, StatusProcessing, StatusShipped))
	})

	t.Run("StatusMovedUnderneath", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`UPDATE orders SET status`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.UpdateStatus(ctx, 1, StatusProcessing, StatusShipped), ErrInvalidTransition)
	})
}
