package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sportshop-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// Commit decrements stock and persists the order atomically. A line that
	// no longer fits the locked stock yields *ValidationError; any other
	// failure wraps ErrCommitFailed.
	Commit(ctx context.Context, d Draft) (*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	// UpdateStatus moves the order from one status to another. It reports
	// ErrInvalidTransition when the order is no longer in from.
	UpdateStatus(ctx context.Context, id int64, from, to Status) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Commit(ctx context.Context, d Draft) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Commit"),
		zap.Int64("user_id", d.UserID),
	)

	start := time.Now()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("begin tx failed", zap.Error(err))
		return nil, commitFailed(err)
	}
	defer tx.Rollback()

	// Rows are locked in ascending id order so concurrent checkouts cannot deadlock.
	rows, err := tx.QueryContext(ctx, `
		SELECT id, stock FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, pq.Array(d.ProductIDs()))
	if err != nil {
		log.Error("lock products failed", zap.Error(err))
		return nil, commitFailed(err)
	}

	stocks := make(map[int64]int, len(d.Lines))
	for rows.Next() {
		var id int64
		var stock int
		if err := rows.Scan(&id, &stock); err != nil {
			rows.Close()
			log.Error("row scan failed", zap.Error(err))
			return nil, commitFailed(err)
		}
		stocks[id] = stock
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		log.Error("rows iteration failed", zap.Error(err))
		return nil, commitFailed(err)
	}
	rows.Close()

	var problems []LineProblem
	for _, l := range d.Lines {
		stock, ok := stocks[l.ProductID]
		if !ok {
			problems = append(problems, LineProblem{
				ProductID: l.ProductID,
				Name:      l.ProductName,
				Requested: l.Quantity,
				Reason:    ReasonNotFound,
			})
			continue
		}
		if p, bad := problemFor(l.ProductID, l.ProductName, l.Quantity, stock); bad {
			problems = append(problems, p)
		}
	}
	if len(problems) > 0 {
		log.Info("stock changed since validation", zap.Int("problems", len(problems)))
		return nil, &ValidationError{Lines: problems}
	}

	for _, l := range d.Lines {
		if _, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1, updated_at = NOW()
			WHERE id = $2
		`, l.Quantity, l.ProductID); err != nil {
			log.Error("stock decrement failed", zap.Int64("product_id", l.ProductID), zap.Error(err))
			return nil, commitFailed(err)
		}
	}

	o := &Order{
		UserID: d.UserID,
		Status: StatusNew,
		Total:  d.Total,
		Lines:  make([]Line, len(d.Lines)),
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, total, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, d.UserID, d.Total, StatusNew).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		log.Error("insert order failed", zap.Error(err))
		return nil, commitFailed(err)
	}

	for i, l := range d.Lines {
		l.Position = i + 1
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_lines (
				order_id, position, product_id, product_name, unit_price,
				discount_percent, discounted_price, quantity, line_total
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			o.ID, l.Position, l.ProductID, l.ProductName, l.UnitPrice,
			l.DiscountPercent, l.DiscountedPrice, l.Quantity, l.LineTotal,
		); err != nil {
			log.Error("insert order line failed", zap.Int64("product_id", l.ProductID), zap.Error(err))
			return nil, commitFailed(err)
		}
		o.Lines[i] = l
	}

	if err := tx.Commit(); err != nil {
		log.Error("commit failed", zap.Error(err))
		return nil, commitFailed(err)
	}

	log.Info("order committed",
		zap.Int64("order_id", o.ID),
		zap.Int("lines", len(o.Lines)),
		zap.Duration("duration", time.Since(start)),
	)
	return o, nil
}

const orderColumns = `id, user_id, status, total, created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (*Order, error) {
	var o Order
	if err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get order",
			zap.String("layer", "repository"),
			zap.Int64("order_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	lines, err := r.linesFor(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]
	return o, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListByUser"),
	)

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	ids := make([]int64, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		orders = append(orders, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	lines, err := r.linesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Lines = lines[orders[i].ID]
	}
	return orders, nil
}

func (r *repository) linesFor(ctx context.Context, orderIDs []int64) (map[int64][]Line, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, position, product_id, product_name, unit_price,
			discount_percent, discounted_price, quantity, line_total
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`, pq.Array(orderIDs))
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load order lines",
			zap.String("layer", "repository"),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]Line, len(orderIDs))
	for rows.Next() {
		var orderID int64
		var l Line
		if err := rows.Scan(
			&orderID, &l.Position, &l.ProductID, &l.ProductName, &l.UnitPrice,
			&l.DiscountPercent, &l.DiscountedPrice, &l.Quantity, &l.LineTotal,
		); err != nil {
			return nil, err
		}
		out[orderID] = append(out[orderID], l)
	}
	return out, rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, from, to Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to update order status",
			zap.String("layer", "repository"),
			zap.Int64("order_id", id),
			zap.Error(err),
		)
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInvalidTransition
	}
	return nil
}
