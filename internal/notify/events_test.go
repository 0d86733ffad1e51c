package notify

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexchakra/showcase/internal/domain"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var got []OrderEvent
	err := bus.SubscribeOrder("order.created", func(evt OrderEvent) {
		mu.Lock()
		got = append(got, evt)
		mu.Unlock()
	})
	require.NoError(t, err)

	order := &domain.Order{
		ID:            42,
		OrderNo:       "NX202601010000000001",
		CustomerId:    7,
		TotalAmount:   decimal.NewFromFloat(99.50),
		Status:        domain.OrderPending,
		PaymentStatus: domain.PaymentPending,
	}
	bus.PublishOrder("order.created", order)
	bus.WaitAsync()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, "order.created", got[0].Event)
	assert.Equal(t, int64(42), got[0].OrderId)
	assert.Equal(t, "NX202601010000000001", got[0].OrderNo)
	assert.True(t, got[0].Total.Equal(decimal.NewFromFloat(99.50)))
}

func TestBusTopicsAreIsolated(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	paid := 0
	err := bus.SubscribeOrder("order.paid", func(OrderEvent) {
		mu.Lock()
		paid++
		mu.Unlock()
	})
	require.NoError(t, err)

	bus.PublishOrder("order.created", &domain.Order{ID: 1})
	bus.PublishOrder("order.paid", &domain.Order{ID: 2})
	bus.WaitAsync()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, paid)
}
