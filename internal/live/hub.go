// Package live streams board mutations to WebSocket subscribers, so an
// external viewer can mirror the build session in real time.
package live

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Hub maintains the set of active subscribers and fans events out to them.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
}

// client is one WebSocket subscriber. A buffered send channel keeps one slow
// reader from stalling the fan-out loop.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub. Run must be started in a goroutine before the first
// subscriber connects.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Run is the hub's event loop. It owns the client set: register, unregister
// and broadcast are serialized here, so no mutex is needed. Blocks until the
// context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			log.Debug("live: subscriber connected", "total", len(h.clients))

		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
				log.Debug("live: subscriber left", "total", len(h.clients))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Full buffer means the reader hung; drop it.
					close(c.send)
					delete(h.clients, c)
				}
			}
		}
	}
}

// Publish queues a message for every subscriber. Drops the message instead
// of blocking when the hub is saturated: the feed is advisory, the board is
// the source of truth.
func (h *Hub) Publish(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
		log.Warn("live: hub saturated, dropping event")
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The feed is read-only and carries no credentials.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades an HTTP request to a WebSocket subscription on the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("live: upgrade failed", "err", err)
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, 256)}
	h.register <- c

	go c.writePump()
	go c.readPump()
}

// readPump drains the connection until it closes. Subscribers have nothing
// to say; reading is only how we learn about disconnects.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug("live: read error", "err", err)
			}
			return
		}
	}
}

// writePump forwards hub messages to the socket. Exits when the hub closes
// the send channel.
func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
