package product

import "github.com/shopspring/decimal"

// Quote is the price of one unit at a given stock level.
type Quote struct {
	DiscountPercent int             `json:"discount_percent"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
}

var hundred = decimal.NewFromInt(100)

// DiscountPercent maps current stock to the overstock sell-down tier.
// The breakpoints are a deliberate step table.
func DiscountPercent(stock int) int {
	switch {
	case stock <= 0:
		return 0
	case stock == 1:
		return 20
	case stock <= 3:
		return 10
	case stock <= 5:
		return 5
	default:
		return 0
	}
}

// DiscountedPrice rounds to cents half away from zero.
func DiscountedPrice(price decimal.Decimal, stock int) decimal.Decimal {
	pct := DiscountPercent(stock)
	return price.Mul(decimal.NewFromInt(int64(100 - pct))).Div(hundred).Round(2)
}

func QuoteFor(price decimal.Decimal, stock int) Quote {
	return Quote{
		DiscountPercent: DiscountPercent(stock),
		DiscountedPrice: DiscountedPrice(price, stock),
	}
}
