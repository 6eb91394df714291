package cart

import (
	"encoding/json"
	"slices"

	"sportshop-be/internal/product"

	"github.com/shopspring/decimal"
)

// Cart maps product id to a positive quantity. Methods never mutate the
// receiver; every change returns a new Cart.
type Cart map[int64]int

func New() Cart {
	return Cart{}
}

func (c Cart) Quantity(productID int64) int {
	return c[productID]
}

func (c Cart) Len() int {
	return len(c)
}

func (c Cart) IsEmpty() bool {
	return len(c) == 0
}

// ProductIDs returns the line keys in ascending order.
func (c Cart) ProductIDs() []int64 {
	ids := make([]int64, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for id, qty := range c {
		out[id] = qty
	}
	return out
}

// With sets the line quantity; a quantity below 1 drops the line.
func (c Cart) With(productID int64, qty int) Cart {
	out := c.Clone()
	if qty < 1 {
		delete(out, productID)
		return out
	}
	out[productID] = qty
	return out
}

func (c Cart) Without(productID int64) Cart {
	return c.With(productID, 0)
}

// UnmarshalJSON drops non-positive quantities so a decoded cart always holds the invariant.
func (c *Cart) UnmarshalJSON(b []byte) error {
	var raw map[int64]int
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	out := make(Cart, len(raw))
	for id, qty := range raw {
		if qty >= 1 {
			out[id] = qty
		}
	}
	*c = out
	return nil
}

type Action string

const (
	ActionIncrease Action = "increase"
	ActionDecrease Action = "decrease"
	ActionRemove   Action = "remove"
)

func (a Action) Valid() bool {
	switch a {
	case ActionIncrease, ActionDecrease, ActionRemove:
		return true
	}
	return false
}

// Line is one resolved cart entry priced at the current stock.
type Line struct {
	Product   product.Product `json:"product"`
	Quantity  int             `json:"quantity"`
	Quote     product.Quote   `json:"quote"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Summary struct {
	Lines []Line          `json:"lines"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
	// Missing lists cart product ids that no longer resolve.
	Missing []int64 `json:"missing,omitempty"`
}
