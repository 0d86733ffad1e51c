package notify

import (
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/shopspring/decimal"

	"github.com/nexchakra/showcase/internal/domain"
)

// OrderEvent is the payload published on order lifecycle topics and pushed
// to websocket subscribers.
type OrderEvent struct {
	Event         string          `json:"event"`
	OrderId       int64           `json:"order_id,string"`
	OrderNo       string          `json:"order_no"`
	CustomerId    int64           `json:"customer_id,string"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	At            time.Time       `json:"at"`
}

// EventStockLow is published when an order drains a product near empty
const EventStockLow = "stock.low"

// StockEvent is the payload on the stock.low topic
type StockEvent struct {
	Event     string    `json:"event"`
	ProductId int64     `json:"product_id,string"`
	Title     string    `json:"title"`
	Sku       string    `json:"sku"`
	Stock     int       `json:"stock"`
	At        time.Time `json:"at"`
}

// Bus wraps the process-local event bus. Checkout publishes into it; the
// websocket hub and the mailer subscribe.
type Bus struct {
	bus EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

// PublishOrder emits an order lifecycle event on its topic
func (b *Bus) PublishOrder(event string, order *domain.Order) {
	b.bus.Publish(event, OrderEvent{
		Event:         event,
		OrderId:       order.ID,
		OrderNo:       order.OrderNo,
		CustomerId:    order.CustomerId,
		Total:         order.TotalAmount,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		At:            time.Now(),
	})
}

// PublishStockLow emits a low-stock warning for one product
func (b *Bus) PublishStockLow(p *domain.Product) {
	b.bus.Publish(EventStockLow, StockEvent{
		Event:     EventStockLow,
		ProductId: p.ID,
		Title:     p.Title,
		Sku:       p.Sku,
		Stock:     p.Stock,
		At:        time.Now(),
	})
}

// SubscribeStockLow registers an async handler for low-stock warnings
func (b *Bus) SubscribeStockLow(fn func(StockEvent)) error {
	return b.bus.SubscribeAsync(EventStockLow, fn, false)
}

// SubscribeOrder registers an async handler for one order topic
func (b *Bus) SubscribeOrder(event string, fn func(OrderEvent)) error {
	return b.bus.SubscribeAsync(event, fn, false)
}

// WaitAsync blocks until queued async handlers have run (used in tests and shutdown)
func (b *Bus) WaitAsync() {
	b.bus.WaitAsync()
}
