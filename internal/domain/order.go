package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order status lifecycle
const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// Payment status values
const (
	PaymentPending = "pending"
	PaymentSuccess = "success"
	PaymentFailed  = "failed"
)

// Order is a persisted checkout result. Items snapshot the unit price at
// purchase time; later catalog edits never change an order.
type Order struct {
	ID            int64           `json:"id,string" form:"id"`
	OrderNo       string          `gorm:"uniqueIndex;size:32" json:"order_no"`
	CustomerId    int64           `gorm:"index" json:"customer_id,string" form:"customer_id"`
	AddressId     int64           `json:"address_id,string" form:"address_id"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(10,2)" json:"total_amount"`
	Status        string          `gorm:"size:32;index;default:pending" json:"status"`
	PaymentStatus string          `gorm:"size:32;index;default:pending" json:"payment_status"`
	PaymentRef    string          `gorm:"size:128" json:"payment_ref"`
	PaymentRetry  int             `json:"payment_retry"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "orders"
}

// CanTransition reports whether an order status change is legal.
// pending -> paid | cancelled; paid -> shipped | cancelled;
// shipped -> delivered; delivered and cancelled are terminal.
func (o Order) CanTransition(next string) bool {
	switch o.Status {
	case OrderPending:
		return next == OrderPaid || next == OrderCancelled
	case OrderPaid:
		return next == OrderShipped || next == OrderCancelled
	case OrderShipped:
		return next == OrderDelivered
	default:
		return false
	}
}

// RestocksOnCancel reports whether cancelling from the current status must
// return reserved stock to the catalog. Shipped goods are already gone.
func (o Order) RestocksOnCancel() bool {
	return o.Status == OrderPending || o.Status == OrderPaid
}

// OrderItem is a single purchased line with quantity and price snapshot
type OrderItem struct {
	ID        int64           `json:"id,string" form:"id"`
	OrderId   int64           `gorm:"index" json:"order_id,string" form:"order_id"`
	ProductId int64           `gorm:"index" json:"product_id,string" form:"product_id"`
	VariantId int64           `json:"variant_id,string" form:"variant_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity" form:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(10,2)" json:"unit_price"`
}

// TableName Specify table name
func (OrderItem) TableName() string {
	return "order_items"
}

// Subtotal returns quantity * unit price
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
