package notify

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexchakra/showcase/internal/domain"
)

func startHubServer(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	e := echo.New()
	e.GET("/ws/notifications", hub.Handler)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool {
		return hub.SubscriberCount() == 1
	}, time.Second, 10*time.Millisecond)
	return conn
}

func TestHubBroadcastsOrderEvent(t *testing.T) {
	bus := NewBus()
	hub, err := NewHub(bus, "order.created")
	require.NoError(t, err)
	defer hub.Close()

	conn := startHubServer(t, hub)

	bus.PublishOrder("order.created", &domain.Order{ID: 42, OrderNo: "NX202601010000000001"})
	bus.WaitAsync()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var evt OrderEvent
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, "order.created", evt.Event)
	assert.Equal(t, int64(42), evt.OrderId)
}

func TestHubOverlappingBroadcasts(t *testing.T) {
	// The bus runs each async handler in its own goroutine, so bursts of
	// events hit the same connection from many goroutines at once. Every
	// frame must still arrive intact.
	bus := NewBus()
	hub, err := NewHub(bus, "order.created", "order.paid")
	require.NoError(t, err)
	defer hub.Close()

	conn := startHubServer(t, hub)

	const n = 200
	for i := 0; i < n; i++ {
		event := "order.created"
		if i%2 == 1 {
			event = "order.paid"
		}
		bus.PublishOrder(event, &domain.Order{
			ID:      int64(i + 1),
			OrderNo: fmt.Sprintf("NX2026%014d", i+1),
		})
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for i := 0; i < n; i++ {
		var evt OrderEvent
		require.NoError(t, conn.ReadJSON(&evt))
		require.NotZero(t, evt.OrderId)
	}
	bus.WaitAsync()
	assert.Equal(t, 1, hub.SubscriberCount())
}
