package cart

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfStock      = errors.New("product is out of stock")
	ErrInvalidQuantity = errors.New("invalid cart quantity")
	ErrInvalidAction   = errors.New("invalid cart action")
)

// InsufficientStockError reports how many more units could still be added.
type InsufficientStockError struct {
	ProductID int64 `json:"product_id"`
	Requested int   `json:"requested"`
	Available int   `json:"available"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, can add %d",
		e.ProductID, e.Requested, e.Available)
}
