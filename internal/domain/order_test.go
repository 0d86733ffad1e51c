package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{OrderPending, OrderPaid, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderShipped, false},
		{OrderPending, OrderDelivered, false},
		{OrderPaid, OrderShipped, true},
		{OrderPaid, OrderCancelled, true},
		{OrderPaid, OrderDelivered, false},
		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderCancelled, false},
		{OrderDelivered, OrderCancelled, false},
		{OrderCancelled, OrderPaid, false},
	}
	for _, c := range cases {
		o := Order{Status: c.from}
		assert.Equal(t, c.want, o.CanTransition(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestOrderRestocksOnCancel(t *testing.T) {
	assert.True(t, Order{Status: OrderPending}.RestocksOnCancel())
	assert.True(t, Order{Status: OrderPaid}.RestocksOnCancel())
	assert.False(t, Order{Status: OrderShipped}.RestocksOnCancel())
	assert.False(t, Order{Status: OrderCancelled}.RestocksOnCancel())
}

func TestProductSellingPrice(t *testing.T) {
	list := decimal.NewFromFloat(199.99)
	discount := decimal.NewFromFloat(149.50)

	p := Product{Price: list}
	assert.True(t, p.SellingPrice().Equal(list))

	p.DiscountPrice = &discount
	assert.True(t, p.SellingPrice().Equal(discount))

	zero := decimal.Zero
	p.DiscountPrice = &zero
	assert.True(t, p.SellingPrice().Equal(list), "zero discount falls back to list price")
}

func TestOrderItemSubtotal(t *testing.T) {
	item := OrderItem{Quantity: 3, UnitPrice: decimal.NewFromFloat(49.99)}
	assert.True(t, item.Subtotal().Equal(decimal.NewFromFloat(149.97)))
}

func TestCartSessionFind(t *testing.T) {
	cart := CartSession{Lines: []CartLine{
		{ProductId: 1, VariantId: 0, Quantity: 1},
		{ProductId: 2, VariantId: 7, Quantity: 2},
	}}
	assert.Equal(t, 0, cart.Find(1, 0))
	assert.Equal(t, 1, cart.Find(2, 7))
	assert.Equal(t, -1, cart.Find(2, 0))
	assert.False(t, cart.IsEmpty())
	assert.True(t, CartSession{}.IsEmpty())
}
