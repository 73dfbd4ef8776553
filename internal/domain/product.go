package domain

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            int64               `json:"id"`
	Name          string              `json:"name"`
	Description   string              `json:"description"`
	Price         decimal.NullDecimal `json:"price"`
	DiscountPrice decimal.NullDecimal `json:"discount_price"`
	Stock         int                 `json:"stock"`
	IsActive      bool                `json:"is_active"`
	Slug          string              `json:"slug"`
	CategoryID    *int64              `json:"category_id"`
	RatingAverage decimal.Decimal     `json:"rating_average"`
	RatingCount   int                 `json:"rating_count"`
	CreatedAt     time.Time           `json:"created_at"`
}

// UnitPrice is the price used for all cart and checkout math.
// A product without a price counts as zero, never as an error.
func (p *Product) UnitPrice() decimal.Decimal {
	if !p.Price.Valid {
		return decimal.Zero
	}
	return p.Price.Decimal
}

type Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	IsActive bool   `json:"is_active"`
}

type ProductRating struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	UserID    int64     `json:"user_id"`
	Stars     int       `json:"stars"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Slugify derives a URL slug from a product or category name.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
