// Package kds pushes live front-of-house events to kitchen displays and
// waiter terminals over websockets.
package kds

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/comanda-app/utils"
)

// Event types
const (
	EventOrderCreated = "order_created"
	EventOrderUpdated = "order_updated"
	EventTabOpened    = "tab_opened"
	EventTabClosed    = "tab_closed"
	EventTabCancelled = "tab_cancelled"
	EventTableUpdated = "table_updated"
	EventStockLow     = "stock_low"
	EventTabStale     = "tab_stale"
)

type Message struct {
	Event        string      `json:"event"`
	RestaurantID string      `json:"restaurant_id"`
	Data         interface{} `json:"data"`
	SentAt       time.Time   `json:"sent_at"`
}

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Relay forwards encoded messages to every instance, this one included.
type Relay interface {
	Forward(ctx context.Context, payload []byte) error
}

// writeWait bounds a single write so one stalled display cannot hold up the
// rest of its restaurant's events.
const writeWait = 5 * time.Second

type client struct {
	restaurantID string
	role         string
	// writeMu serializes writes to the connection, which allows one writer.
	writeMu sync.Mutex
}

type deadliner interface {
	SetWriteDeadline(t time.Time) error
}

// Hub keeps the connected clients of every restaurant.
type Hub struct {
	mutex   sync.Mutex
	clients map[Conn]*client
	relay   Relay
}

func NewHub() *Hub {
	return &Hub{clients: make(map[Conn]*client)}
}

// SetRelay routes published messages through relay instead of delivering
// them locally.
func (h *Hub) SetRelay(relay Relay) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.relay = relay
}

func (h *Hub) Register(conn Conn, restaurantID, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = &client{restaurantID: restaurantID, role: role}
	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": restaurantID,
		"role":          role,
	}).Info("KDS client connected")
}

func (h *Hub) Unregister(conn Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// ClientCount returns the connected clients of a restaurant.
func (h *Hub) ClientCount(restaurantID string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	n := 0
	for _, c := range h.clients {
		if c.restaurantID == restaurantID {
			n++
		}
	}
	return n
}

// Publish sends an event to the displays of one restaurant.
func (h *Hub) Publish(restaurantID, event string, data interface{}) {
	payload, err := json.Marshal(Message{
		Event:        event,
		RestaurantID: restaurantID,
		Data:         data,
		SentAt:       time.Now().UTC(),
	})
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling %s event: %v", event, err)
		return
	}

	h.mutex.Lock()
	relay := h.relay
	h.mutex.Unlock()

	if relay != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := relay.Forward(ctx, payload)
		if err == nil {
			return
		}
		utils.ErrorLogger.Errorf("Relay unavailable, delivering %s locally: %v", event, err)
	}
	h.Deliver(payload)
}

// Deliver writes an encoded message to the local clients of its restaurant.
// Clients that fail a write are dropped.
func (h *Hub) Deliver(payload []byte) {
	var head struct {
		RestaurantID string `json:"restaurant_id"`
	}
	if err := json.Unmarshal(payload, &head); err != nil || head.RestaurantID == "" {
		utils.ErrorLogger.Errorf("Dropping malformed KDS message: %v", err)
		return
	}

	type target struct {
		conn Conn
		c    *client
	}
	h.mutex.Lock()
	targets := make([]target, 0, len(h.clients))
	for conn, c := range h.clients {
		if c.restaurantID == head.RestaurantID {
			targets = append(targets, target{conn: conn, c: c})
		}
	}
	h.mutex.Unlock()

	for _, t := range targets {
		if err := t.c.write(t.conn, payload); err != nil {
			utils.ErrorLogger.Errorf("Error sending to %s client: %v", t.c.role, err)
			h.drop(t.conn, t.c)
		}
	}
}

func (c *client) write(conn Conn, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if d, ok := conn.(deadliner); ok {
		if err := d.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// drop removes conn unless it was unregistered or re-registered meanwhile.
func (h *Hub) drop(conn Conn, c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.clients[conn] == c {
		delete(h.clients, conn)
		conn.Close()
	}
}
