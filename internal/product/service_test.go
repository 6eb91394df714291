package product

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context) ([]Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Product), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, input NewProductInput) (*Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, input UpdateProductInput) (*Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) SetStock(ctx context.Context, id int64, stock int) (int, *Product, error) {
	args := m.Called(ctx, id, stock)
	if args.Get(1) == nil {
		return args.Int(0), nil, args.Error(2)
	}
	return args.Int(0), args.Get(1).(*Product), args.Error(2)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockRestockListener struct {
	mock.Mock
}

func (m *MockRestockListener) ProductRestocked(ctx context.Context, p Product) {
	m.Called(ctx, p)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("TrimsAndCreates", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil)
		in := NewProductInput{Name: "  Ball ", Price: decimal.NewFromInt(10), Stock: 2}
		want := NewProductInput{Name: "Ball", Price: decimal.NewFromInt(10), Stock: 2}

		repo.On("Create", ctx, want).Return(&Product{ID: 1, Name: "Ball"}, nil)

		p, err := svc.Create(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, int64(1), p.ID)
		repo.AssertExpectations(t)
	})

	t.Run("Validation", func(t *testing.T) {
		svc := NewService(new(MockRepository), nil)

		_, err := svc.Create(ctx, NewProductInput{Name: " "})
		assert.ErrorIs(t, err, ErrInvalidName)

		_, err = svc.Create(ctx, NewProductInput{Name: "x", Price: decimal.NewFromInt(-1)})
		assert.ErrorIs(t, err, ErrInvalidPrice)

		_, err = svc.Create(ctx, NewProductInput{Name: "x", Stock: -1})
		assert.ErrorIs(t, err, ErrInvalidStock)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	svc := NewService(new(MockRepository), nil)

	_, err := svc.Update(ctx, UpdateProductInput{ID: 1})
	assert.ErrorIs(t, err, ErrNothingToEdit)

	empty := "   "
	_, err = svc.Update(ctx, UpdateProductInput{ID: 1, Name: &empty})
	assert.ErrorIs(t, err, ErrInvalidName)

	neg := decimal.NewFromInt(-5)
	_, err = svc.Update(ctx, UpdateProductInput{ID: 1, Price: &neg})
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestService_SetStock(t *testing.T) {
	ctx := context.Background()

	t.Run("RestockFromZeroNotifies", func(t *testing.T) {
		repo := new(MockRepository)
		listener := new(MockRestockListener)
		svc := NewService(repo, listener)
		restocked := &Product{ID: 3, Name: "Ball", Stock: 5}

		repo.On("SetStock", ctx, int64(3), 5).Return(0, restocked, nil)
		listener.On("ProductRestocked", ctx, *restocked).Return()

		p, err := svc.SetStock(ctx, 3, 5)
		require.NoError(t, err)
		assert.Equal(t, 5, p.Stock)
		listener.AssertExpectations(t)
	})

	t.Run("TopUpDoesNotNotify", func(t *testing.T) {
		repo := new(MockRepository)
		listener := new(MockRestockListener)
		svc := NewService(repo, listener)

		repo.On("SetStock", ctx, int64(3), 9).Return(2, &Product{ID: 3, Stock: 9}, nil)

		_, err := svc.SetStock(ctx, 3, 9)
		require.NoError(t, err)
		listener.AssertNotCalled(t, "ProductRestocked", mock.Anything, mock.Anything)
	})

	t.Run("SellOutDoesNotNotify", func(t *testing.T) {
		repo := new(MockRepository)
		listener := new(MockRestockListener)
		svc := NewService(repo, listener)

		repo.On("SetStock", ctx, int64(3), 0).Return(4, &Product{ID: 3, Stock: 0}, nil)

		_, err := svc.SetStock(ctx, 3, 0)
		require.NoError(t, err)
		listener.AssertNotCalled(t, "ProductRestocked", mock.Anything, mock.Anything)
	})

	t.Run("NegativeRejected", func(t *testing.T) {
		_, err := NewService(new(MockRepository), nil).SetStock(ctx, 3, -1)
		assert.ErrorIs(t, err, ErrInvalidStock)
	})

	t.Run("RepoError", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil)
		repo.On("SetStock", ctx, int64(3), 1).Return(0, nil, ErrNotFound)

		_, err := svc.SetStock(ctx, 3, 1)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}
