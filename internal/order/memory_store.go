package order

import (
	"context"
	"slices"
	"sync"
	"time"

	"sportshop-be/internal/product"
)

// MemoryStore is an in-process Repository and product lookup for stores
// without row locking. Commit holds a lock per product, taken in ascending
// id order, across check, decrement and insert; mu only guards the maps for
// the moment they are read or written. Orders are copied in and out.
type MemoryStore struct {
	mu       sync.Mutex
	products map[int64]product.Product
	locks    map[int64]*sync.Mutex
	orders   []Order
	nextID   int64
}

func NewMemoryStore(products ...product.Product) *MemoryStore {
	s := &MemoryStore{
		products: make(map[int64]product.Product),
		locks:    make(map[int64]*sync.Mutex),
	}
	for _, p := range products {
		s.Put(p)
	}
	return s
}

// Put inserts or replaces a catalog entry. It waits for any checkout
// holding the product.
func (s *MemoryStore) Put(p product.Product) {
	l := s.lockFor(p.ID)
	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *MemoryStore) DeleteProduct(id int64) {
	l := s.lockFor(id)
	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
}

func (s *MemoryStore) Get(_ context.Context, id int64) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) lockFor(id int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *MemoryStore) Commit(_ context.Context, d Draft) (*Order, error) {
	ids := slices.Clone(d.ProductIDs())
	slices.Sort(ids)
	ids = slices.Compact(ids)

	for _, id := range ids {
		l := s.lockFor(id)
		l.Lock()
		defer l.Unlock()
	}

	stocks := s.stocks(ids)

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
		if lp, bad := problemFor(l.ProductID, l.ProductName, l.Quantity, stock); bad {
			problems = append(problems, lp)
		}
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Lines: problems}
	}

	return s.apply(d), nil
}

// stocks reads the current stock of ids. Callers hold the product locks.
func (s *MemoryStore) stocks(ids []int64) map[int64]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int64]int, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p.Stock
		}
	}
	return out
}

// apply decrements stock and records the order. Callers hold the product locks.
func (s *MemoryStore) apply(d Draft) *Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, l := range d.Lines {
		p := s.products[l.ProductID]
		p.Stock -= l.Quantity
		p.UpdatedAt = now
		s.products[l.ProductID] = p
	}

	s.nextID++
	o := Order{
		ID:        s.nextID,
		UserID:    d.UserID,
		Status:    StatusNew,
		Total:     d.Total,
		CreatedAt: now,
		UpdatedAt: now,
		Lines:     make([]Line, len(d.Lines)),
	}
	for i, l := range d.Lines {
		l.Position = i + 1
		o.Lines[i] = l
	}
	s.orders = append(s.orders, o)

	return cloneOrder(o)
}

func cloneOrder(o Order) *Order {
	o.Lines = slices.Clone(o.Lines)
	return &o
}

func (s *MemoryStore) GetByID(_ context.Context, id int64) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == id {
			return cloneOrder(o), nil
		}
	}
	return nil, ErrOrderNotFound
}

func (s *MemoryStore) ListByUser(_ context.Context, userID int64) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Order, 0)
	for i := len(s.orders) - 1; i >= 0; i-- {
		if s.orders[i].UserID == userID {
			out = append(out, *cloneOrder(s.orders[i]))
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id int64, from, to Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID != id {
			continue
		}
		if s.orders[i].Status != from {
			return ErrInvalidTransition
		}
		s.orders[i].Status = to
		s.orders[i].UpdatedAt = time.Now()
		return nil
	}
	return ErrOrderNotFound
}
