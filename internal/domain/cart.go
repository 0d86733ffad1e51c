package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartSession is the ephemeral pre-order basket. It lives in the session
// store (Redis) under the owning customer ID, never in the database, and is
// destroyed on checkout or TTL expiry.
type CartSession struct {
	CustomerId int64      `json:"customer_id,string"`
	Lines      []CartLine `json:"lines"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CartLine one product (optionally a specific variant) and a quantity
type CartLine struct {
	ProductId int64 `json:"product_id,string"`
	VariantId int64 `json:"variant_id,string"`
	Quantity  int   `json:"quantity"`
}

// IsEmpty reports whether the cart has no lines
func (c CartSession) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Find returns the index of the line matching product+variant, or -1
func (c CartSession) Find(productId, variantId int64) int {
	for i, l := range c.Lines {
		if l.ProductId == productId && l.VariantId == variantId {
			return i
		}
	}
	return -1
}

// PricedCartLine is a cart line joined with current catalog data for display
type PricedCartLine struct {
	CartLine
	Title     string          `json:"title"`
	Slug      string          `json:"slug"`
	ImageUrl  string          `json:"image_url"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Stock     int             `json:"stock"`
}

// PricedCart is the cart as returned to the storefront
type PricedCart struct {
	Lines []PricedCartLine `json:"lines"`
	Total decimal.Decimal  `json:"total"`
}
