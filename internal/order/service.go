package order

import (
	"context"
	"errors"
	"fmt"

	"sportshop-be/internal/cart"
	"sportshop-be/internal/logger"
	"sportshop-be/internal/metrics"
	"sportshop-be/internal/product"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	// Checkout validates the cart against live stock and commits it as an
	// order. On success the returned cart is empty; on any error it is c.
	Checkout(ctx context.Context, userID int64, c cart.Cart) (*Order, cart.Cart, error)
	Get(ctx context.Context, userID, orderID int64, isAdmin bool) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status Status) (*Order, error)
}

type service struct {
	repo     Repository
	products cart.ProductFinder
	stats    *metrics.Checkout
}

// NewService builds the checkout service. stats may be nil.
func NewService(repo Repository, products cart.ProductFinder, stats *metrics.Checkout) Service {
	if stats == nil {
		stats = &metrics.Checkout{}
	}
	return &service{repo: repo, products: products, stats: stats}
}

func (s *service) Checkout(ctx context.Context, userID int64, c cart.Cart) (*Order, cart.Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Checkout"),
		zap.Int("lines", c.Len()),
	)

	if userID == 0 {
		return nil, c, ErrUnauthorized
	}
	if c.IsEmpty() {
		return nil, c, ErrEmptyCart
	}

	s.stats.Attempts.Inc()

	draft, err := s.validate(ctx, userID, c)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			s.stats.Rejected.Inc()
			log.Info("checkout rejected", zap.Int("problems", len(verr.Lines)))
		} else {
			s.stats.Failed.Inc()
			log.Error("checkout validation failed", zap.Error(err))
		}
		return nil, c, err
	}

	timer := metrics.StartTimer()
	o, err := s.repo.Commit(ctx, *draft)
	s.stats.ObserveCommit(timer.Duration())
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			s.stats.Rejected.Inc()
			log.Info("checkout lost race for stock", zap.Int("problems", len(verr.Lines)))
		} else {
			s.stats.Failed.Inc()
			log.Error("checkout commit failed", zap.Error(err))
		}
		return nil, c, err
	}
	s.stats.Succeeded.Inc()

	log.Info("checkout complete",
		zap.Int64("order_id", o.ID),
		zap.String("total", o.Total.StringFixed(2)),
	)
	return o, cart.New(), nil
}

// validate prices every line at current stock, in ascending product id.
// Prices computed here are the ones the order records.
func (s *service) validate(ctx context.Context, userID int64, c cart.Cart) (*Draft, error) {
	d := &Draft{UserID: userID, Total: decimal.Zero}
	var problems []LineProblem

	for _, id := range c.ProductIDs() {
		qty := c.Quantity(id)

		p, err := s.products.Get(ctx, id)
		if errors.Is(err, product.ErrNotFound) {
			problems = append(problems, LineProblem{
				ProductID: id,
				Requested: qty,
				Reason:    ReasonNotFound,
			})
			continue
		}
		if err != nil {
			return nil, commitFailed(fmt.Errorf("look up product %d: %w", id, err))
		}

		if lp, bad := problemFor(p.ID, p.Name, qty, p.Stock); bad {
			problems = append(problems, lp)
			continue
		}

		q := p.Quote()
		total := q.DiscountedPrice.Mul(decimal.NewFromInt(int64(qty)))
		d.Lines = append(d.Lines, Line{
			ProductID:       p.ID,
			ProductName:     p.Name,
			UnitPrice:       p.Price,
			DiscountPercent: q.DiscountPercent,
			DiscountedPrice: q.DiscountedPrice,
			Quantity:        qty,
			LineTotal:       total,
		})
		d.Total = d.Total.Add(total)
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Lines: problems}
	}
	return d, nil
}

func (s *service) Get(ctx context.Context, userID, orderID int64, isAdmin bool) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != userID {
		logger.FromCtx(ctx).Warn("order access denied",
			zap.String("layer", "service"),
			zap.Int64("order_id", orderID),
		)
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *service) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) UpdateStatus(ctx context.Context, orderID int64, status Status) (*Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.Status.CanBecome(status) {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.UpdateStatus(ctx, orderID, o.Status, status); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("order status updated",
		zap.String("layer", "service"),
		zap.Int64("order_id", orderID),
		zap.String("from", string(o.Status)),
		zap.String("to", string(status)),
	)

	o.Status = status
	return o, nil
}
