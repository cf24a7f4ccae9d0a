package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"backend/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans events out over websockets: cart-changed events go only to
// connections registered under the same cart owner, order events go to
// every admin feed connection.
type Hub struct {
	mu         sync.Mutex
	cartConns  map[string]map[*websocket.Conn]bool
	orderConns map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{
		cartConns:  make(map[string]map[*websocket.Conn]bool),
		orderConns: make(map[*websocket.Conn]bool),
	}
}

type cartMessage struct {
	Type  string            `json:"type"`
	Lines []models.CartLine `json:"lines"`
}

type orderMessage struct {
	Type  string       `json:"type"`
	Order models.Order `json:"order"`
}

// ServeCart upgrades the connection and keeps it registered under the
// owner until the peer goes away. The read loop exists only to detect
// closure; clients never send anything meaningful.
func (h *Hub) ServeCart(w http.ResponseWriter, r *http.Request, owner string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	h.mu.Lock()
	if h.cartConns[owner] == nil {
		h.cartConns[owner] = make(map[*websocket.Conn]bool)
	}
	h.cartConns[owner][conn] = true
	h.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.cartConns[owner], conn)
	if len(h.cartConns[owner]) == 0 {
		delete(h.cartConns, owner)
	}
	h.mu.Unlock()
}

// ServeOrders registers an admin order-feed connection.
func (h *Hub) ServeOrders(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.orderConns[conn] = true
	h.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.orderConns, conn)
	h.mu.Unlock()
}

// BroadcastCart delivers the full cart to every surface of one owner.
func (h *Hub) BroadcastCart(owner string, lines []models.CartLine) {
	data, err := json.Marshal(cartMessage{Type: "cartUpdated", Lines: lines})
	if err != nil {
		log.Println("[WS] [ERROR] cart message marshal failed:", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.cartConns[owner] {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(h.cartConns[owner], conn)
		}
	}
}

// BroadcastOrder pushes a newly created order to every admin feed.
func (h *Hub) BroadcastOrder(order models.Order) {
	data, err := json.Marshal(orderMessage{Type: "orderCreated", Order: order})
	if err != nil {
		log.Println("[WS] [ERROR] order message marshal failed:", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.orderConns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(h.orderConns, conn)
		}
	}
}
