package notify

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const writeTimeout = 10 * time.Second

// Hub pushes order events to websocket subscribers on /ws/notifications.
// The storefront admin panel listens here for live order activity.
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.Mutex
	clients  map[*websocket.Conn]*client
}

// client pairs a connection with its write lock. The bus runs each handler
// in its own goroutine and gorilla/websocket allows one writer per
// connection, so every write must hold writeMu.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewHub builds a hub subscribed to every order topic on the bus
func NewHub(bus *Bus, events ...string) (*Hub, error) {
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]*client),
	}
	for _, event := range events {
		if err := bus.SubscribeOrder(event, h.Broadcast); err != nil {
			return nil, err
		}
	}
	if err := bus.SubscribeStockLow(h.BroadcastStock); err != nil {
		return nil, err
	}
	return h, nil
}

// Handler upgrades the connection and keeps it registered until it closes
func (h *Hub) Handler(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.clients[conn] = &client{conn: conn}
	count := len(h.clients)
	h.mu.Unlock()
	zap.L().Debug("websocket subscriber connected", zap.Int("subscribers", count))

	// drain reads so close frames are processed; subscribers never send data
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}

// Broadcast sends one order event to every connected subscriber
func (h *Hub) Broadcast(evt OrderEvent) {
	data, err := json.Marshal(evt)
	if err != nil {
		zap.L().Error("failed to marshal order event", zap.Error(err))
		return
	}
	h.send(data)
}

// BroadcastStock sends a low-stock warning to every connected subscriber
func (h *Hub) BroadcastStock(evt StockEvent) {
	data, err := json.Marshal(evt)
	if err != nil {
		zap.L().Error("failed to marshal stock event", zap.Error(err))
		return
	}
	h.send(data)
}

func (h *Hub) send(data []byte) {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for _, cl := range h.clients {
		clients = append(clients, cl)
	}
	h.mu.Unlock()

	for _, cl := range clients {
		cl.writeMu.Lock()
		_ = cl.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		err := cl.conn.WriteMessage(websocket.TextMessage, data)
		cl.writeMu.Unlock()
		if err != nil {
			h.drop(cl.conn)
		}
	}
}

// SubscriberCount returns the number of live websocket clients
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every subscriber
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.clients = make(map[*websocket.Conn]*client)
	h.mu.Unlock()
	for _, conn := range conns {
		_ = conn.Close()
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close()
}
