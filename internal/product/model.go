package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Available reports whether at least one unit can be sold.
func (p Product) Available() bool {
	return p.Stock > 0
}

// Quote prices the product against its current stock.
func (p Product) Quote() Quote {
	return QuoteFor(p.Price, p.Stock)
}

type NewProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
}

type UpdateProductInput struct {
	ID          int64
	Name        *string
	Description *string
	Price       *decimal.Decimal
}

func (in UpdateProductInput) HasChanges() bool {
	return in.Name != nil || in.Description != nil || in.Price != nil
}
