package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart holds the product lines a user intends to buy. Quantities for the
// same product are merged into a single item, never duplicated. Totals are
// not part of the cart: they are recomputed from live product prices on
// every read.
type Cart struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// PricedCartLine is a cart item joined with the product it references, as
// read inside the checkout transaction. UnitPrice is the catalog price at
// that instant; a product without a price reads as invalid and prices as
// zero.
type PricedCartLine struct {
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.NullDecimal
}

// EffectivePrice applies the zero fallback for missing prices.
func (l PricedCartLine) EffectivePrice() decimal.Decimal {
	if !l.UnitPrice.Valid {
		return decimal.Zero
	}
	return l.UnitPrice.Decimal
}
