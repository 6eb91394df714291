package order

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrCommitFailed      = errors.New("checkout commit failed")
	ErrOrderNotFound     = errors.New("order not found")
	ErrForbidden         = errors.New("order belongs to another user")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("order status transition not allowed")
)

const (
	ReasonNotFound          = "not_found"
	ReasonOutOfStock        = "out_of_stock"
	ReasonInsufficientStock = "insufficient_stock"
)

// LineProblem describes one cart line that cannot be fulfilled.
type LineProblem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
	Reason    string `json:"reason"`
}

type ValidationError struct {
	Lines []LineProblem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		parts[i] = fmt.Sprintf("product %d: %s (requested %d, available %d)",
			l.ProductID, l.Reason, l.Requested, l.Available)
	}
	return "cart validation failed: " + strings.Join(parts, "; ")
}

// problemFor classifies a line against the stock it was checked against.
func problemFor(productID int64, name string, requested, stock int) (LineProblem, bool) {
	if requested <= stock {
		return LineProblem{}, false
	}
	reason := ReasonInsufficientStock
	if stock <= 0 {
		reason = ReasonOutOfStock
	}
	return LineProblem{
		ProductID: productID,
		Name:      name,
		Requested: requested,
		Available: max(stock, 0),
		Reason:    reason,
	}, true
}

func commitFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrCommitFailed, err)
}
