package product

import (
	"context"
	"strings"

	"sportshop-be/internal/logger"

	"go.uber.org/zap"
)

// RestockListener is told when a product goes from sold out to available.
type RestockListener interface {
	ProductRestocked(ctx context.Context, p Product)
}

type Service interface {
	Get(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	Create(ctx context.Context, input NewProductInput) (*Product, error)
	Update(ctx context.Context, input UpdateProductInput) (*Product, error)
	SetStock(ctx context.Context, id int64, stock int) (*Product, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo     Repository
	restocks RestockListener
}

// NewService builds the catalog service. restocks may be nil.
func NewService(repo Repository, restocks RestockListener) Service {
	return &service{repo: repo, restocks: restocks}
}

func (s *service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

func (s *service) Create(ctx context.Context, input NewProductInput) (*Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrInvalidName
	}
	if input.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if input.Stock < 0 {
		return nil, ErrInvalidStock
	}

	return s.repo.Create(ctx, input)
}

func (s *service) Update(ctx context.Context, input UpdateProductInput) (*Product, error) {
	if !input.HasChanges() {
		return nil, ErrNothingToEdit
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidName
		}
		input.Name = &name
	}
	if input.Price != nil && input.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	return s.repo.Update(ctx, input)
}

func (s *service) SetStock(ctx context.Context, id int64, stock int) (*Product, error) {
	if stock < 0 {
		return nil, ErrInvalidStock
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SetStock"),
		zap.Int64("product_id", id),
	)

	previous, p, err := s.repo.SetStock(ctx, id, stock)
	if err != nil {
		return nil, err
	}

	log.Info("stock updated", zap.Int("previous", previous), zap.Int("stock", p.Stock))

	if previous <= 0 && p.Stock > 0 && s.restocks != nil {
		s.restocks.ProductRestocked(ctx, *p)
	}

	return p, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
