package cart

import (
	"context"
	"errors"
	"iter"

	"sportshop-be/internal/logger"
	"sportshop-be/internal/product"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductFinder resolves the live product behind a cart line.
type ProductFinder interface {
	Get(ctx context.Context, id int64) (*product.Product, error)
}

type Service interface {
	Add(ctx context.Context, c Cart, productID int64, qty int) (Cart, error)
	Update(ctx context.Context, c Cart, productID int64, action Action) (Cart, error)
	View(ctx context.Context, c Cart) iter.Seq2[Line, error]
	Summary(ctx context.Context, c Cart) (*Summary, error)
}

type service struct {
	products ProductFinder
}

func NewService(products ProductFinder) Service {
	return &service{products: products}
}

func (s *service) Add(ctx context.Context, c Cart, productID int64, qty int) (Cart, error) {
	if qty < 1 {
		return c, ErrInvalidQuantity
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddToCart"),
		zap.Int64("product_id", productID),
		zap.Int("quantity", qty),
	)

	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return c, err
	}

	if !p.Available() {
		log.Info("add rejected: out of stock")
		return c, ErrOutOfStock
	}

	existing := c.Quantity(productID)
	if existing+qty > p.Stock {
		log.Info("add rejected: insufficient stock",
			zap.Int("existing", existing),
			zap.Int("stock", p.Stock),
		)
		return c, &InsufficientStockError{
			ProductID: productID,
			Requested: qty,
			Available: max(p.Stock-existing, 0),
		}
	}

	return c.With(productID, existing+qty), nil
}

// Update applies increase/decrease/remove. Lines not in the cart are left alone.
func (s *service) Update(ctx context.Context, c Cart, productID int64, action Action) (Cart, error) {
	if !action.Valid() {
		return c, ErrInvalidAction
	}

	qty := c.Quantity(productID)
	if qty == 0 {
		return c, nil
	}

	switch action {
	case ActionIncrease:
		p, err := s.products.Get(ctx, productID)
		if err != nil {
			return c, err
		}
		if qty+1 > p.Stock {
			return c, &InsufficientStockError{
				ProductID: productID,
				Requested: 1,
				Available: max(p.Stock-qty, 0),
			}
		}
		return c.With(productID, qty+1), nil
	case ActionDecrease:
		return c.With(productID, qty-1), nil
	default:
		return c.Without(productID), nil
	}
}

// View lazily resolves each line in product id order. Lines whose product
// was deleted are skipped; any other lookup failure is yielded.
func (s *service) View(ctx context.Context, c Cart) iter.Seq2[Line, error] {
	return func(yield func(Line, error) bool) {
		for _, id := range c.ProductIDs() {
			p, err := s.products.Get(ctx, id)
			if errors.Is(err, product.ErrNotFound) {
				logger.FromCtx(ctx).Debug("skipping cart line for missing product",
					zap.Int64("product_id", id))
				continue
			}
			if err != nil {
				if !yield(Line{Product: product.Product{ID: id}, Quantity: c[id]}, err) {
					return
				}
				continue
			}

			qty := c[id]
			q := p.Quote()
			line := Line{
				Product:   *p,
				Quantity:  qty,
				Quote:     q,
				LineTotal: q.DiscountedPrice.Mul(decimal.NewFromInt(int64(qty))),
			}
			if !yield(line, nil) {
				return
			}
		}
	}
}

func (s *service) Summary(ctx context.Context, c Cart) (*Summary, error) {
	sum := &Summary{
		Lines: make([]Line, 0, c.Len()),
		Total: decimal.Zero,
	}

	seen := make(map[int64]bool, c.Len())
	for line, err := range s.View(ctx, c) {
		if err != nil {
			return nil, err
		}
		seen[line.Product.ID] = true
		sum.Lines = append(sum.Lines, line)
		sum.Count += line.Quantity
		sum.Total = sum.Total.Add(line.LineTotal)
	}

	for _, id := range c.ProductIDs() {
		if !seen[id] {
			sum.Missing = append(sum.Missing, id)
		}
	}

	return sum, nil
}
