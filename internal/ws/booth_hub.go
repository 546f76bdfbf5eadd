package ws

import (
	"encoding/json"
	"sync"
	"time"
)

// PaymentEvent is pushed to the kiosk when the reconciler commits a status
// change, so the booth can unlock (or show failure) without polling.
type PaymentEvent struct {
	OrderID   string `json:"order_id"`
	Status    string `json:"status"`
	UpdatedAt int64  `json:"updated_at"`
}

// Client is a single kiosk WebSocket connection waiting on one order.
type Client struct {
	OrderID string
	Send    chan []byte
	hub     *BoothHub
	mu      sync.Mutex
	closed  bool
}

// Close detaches the client and closes Send. For a registered client the
// channel is closed under the hub's write lock so it cannot race a send in
// NotifyOrder.
func (c *Client) Close() {
	if c.hub != nil {
		c.hub.unregister(c)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// BoothHub maintains kiosk connections keyed by the order id they wait on.
// An order id is only known to the kiosk that created the checkout, so
// subscribing by order id needs no further auth.
type BoothHub struct {
	mu      sync.RWMutex
	byOrder map[string]map[*Client]struct{}
}

func NewBoothHub() *BoothHub {
	return &BoothHub{byOrder: make(map[string]map[*Client]struct{})}
}

func (h *BoothHub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.hub = h
	if h.byOrder[c.OrderID] == nil {
		h.byOrder[c.OrderID] = make(map[*Client]struct{})
	}
	h.byOrder[c.OrderID][c] = struct{}{}
}

func (h *BoothHub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.byOrder[c.OrderID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byOrder, c.OrderID)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// NotifyOrder pushes the new payment status to every kiosk waiting on the order.
func (h *BoothHub) NotifyOrder(orderID, status string) {
	data, _ := json.Marshal(PaymentEvent{
		OrderID:   orderID,
		Status:    status,
		UpdatedAt: time.Now().Unix(),
	})
	// Send while holding the read lock: unregister closes Send under the
	// write lock, so a client still present here cannot be closed mid-send.
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.byOrder[orderID] {
		select {
		case c.Send <- data:
		default:
		}
	}
}

func (h *BoothHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, m := range h.byOrder {
		n += len(m)
	}
	return n
}
