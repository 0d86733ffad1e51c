package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category supports hierarchical browsing via ParentId (0 = top level)
type Category struct {
	ID          int64     `json:"id,string" form:"id"`
	Name        string    `gorm:"index" json:"name" form:"name"`
	Slug        string    `gorm:"uniqueIndex;size:255" json:"slug" form:"slug"`
	ParentId    int64     `gorm:"index" json:"parent_id,string" form:"parent_id"`
	Description string    `json:"description" form:"description"`
	Image       string    `gorm:"size:1024" json:"image" form:"image"`
	Sort        int       `json:"sort" form:"sort"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Category) TableName() string {
	return "categories"
}

// Product is a sellable catalog item. Stock must never go negative; checkout
// decrements it with a guarded update rather than read-then-write.
type Product struct {
	ID            int64            `json:"id,string" form:"id"`
	CategoryId    int64            `gorm:"index" json:"category_id,string" form:"category_id"`
	Title         string           `gorm:"index" json:"title" form:"title"`
	Slug          string           `gorm:"uniqueIndex;size:255" json:"slug" form:"slug"`
	Sku           string           `gorm:"uniqueIndex;size:64" json:"sku" form:"sku"`
	Description   string           `json:"description" form:"description"`
	Price         decimal.Decimal  `gorm:"type:numeric(10,2)" json:"price" form:"price"`
	DiscountPrice *decimal.Decimal `gorm:"type:numeric(10,2)" json:"discount_price,omitempty" form:"discount_price"`
	Material      string           `gorm:"size:128" json:"material" form:"material"`
	Weight        decimal.Decimal  `gorm:"type:numeric(10,2)" json:"weight" form:"weight"`
	Stock         int              `json:"stock" form:"stock"`
	IsLimited     bool             `json:"is_limited" form:"is_limited"`
	IsActive      bool             `gorm:"default:true" json:"is_active" form:"is_active"`
	ImageUrl      string           `gorm:"size:1024" json:"image_url" form:"image_url"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}

// SellingPrice returns the discount price when present, the list price otherwise
func (p Product) SellingPrice() decimal.Decimal {
	if p.DiscountPrice != nil && p.DiscountPrice.IsPositive() {
		return *p.DiscountPrice
	}
	return p.Price
}

// ProductImage gallery image; at most one per product is primary
type ProductImage struct {
	ID        int64  `json:"id,string" form:"id"`
	ProductId int64  `gorm:"index" json:"product_id,string" form:"product_id"`
	ImageUrl  string `gorm:"size:1024" json:"image_url" form:"image_url"`
	IsPrimary bool   `json:"is_primary" form:"is_primary"`
}

// TableName Specify table name
func (ProductImage) TableName() string {
	return "product_images"
}

// ProductVariant optional size/finish variation with price and stock overrides
type ProductVariant struct {
	ID           int64            `json:"id,string" form:"id"`
	ProductId    int64            `gorm:"index" json:"product_id,string" form:"product_id"`
	VariantName  string           `gorm:"size:128" json:"variant_name" form:"variant_name"`
	VariantValue string           `gorm:"size:128" json:"variant_value" form:"variant_value"`
	Price        *decimal.Decimal `gorm:"type:numeric(10,2)" json:"price,omitempty" form:"price"`
	Stock        *int             `json:"stock,omitempty" form:"stock"`
}

// TableName Specify table name
func (ProductVariant) TableName() string {
	return "product_variants"
}
