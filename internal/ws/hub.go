package ws

import (
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog/log"
)

const (
	broadcastBuffer = 256
	clientBuffer    = 256
	writeWait       = 10 * time.Second
)

// Conn is the part of a websocket connection the hub writes to
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type client struct {
	conn Conn
	send chan []byte
}

// Hub fans stock and bill events out to every connected websocket client.
// Each client has its own queue and writer goroutine, so a slow client
// never holds up the others; one whose queue overflows is dropped.
type Hub struct {
	Register   chan Conn
	Unregister chan Conn
	Broadcast  chan []byte

	clients      map[Conn]*client
	clientBuffer int
	writeWait    time.Duration
	mutex        sync.Mutex
}

func NewHub() *Hub {
	return newHub(clientBuffer, writeWait)
}

func newHub(clientBuf int, wait time.Duration) *Hub {
	return &Hub{
		Register:     make(chan Conn),
		Unregister:   make(chan Conn),
		Broadcast:    make(chan []byte, broadcastBuffer),
		clients:      make(map[Conn]*client),
		clientBuffer: clientBuf,
		writeWait:    wait,
	}
}

// Send queues msg for broadcast without blocking. Messages sent from one
// goroutine reach every client in send order. It reports false when the
// broadcast queue is full and msg was dropped.
func (h *Hub) Send(msg []byte) bool {
	select {
	case h.Broadcast <- msg:
		return true
	default:
		return false
	}
}

// ClientCount reports how many clients are currently connected
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			c := &client{conn: conn, send: make(chan []byte, h.clientBuffer)}
			h.mutex.Lock()
			h.clients[conn] = c
			n := len(h.clients)
			h.mutex.Unlock()
			go h.writePump(c)
			log.Debug().Int("clients", n).Msg("ws client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			h.remove(conn)
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn, c := range h.clients {
				select {
				case c.send <- message:
				default:
					log.Warn().Msg("ws client too slow, disconnecting")
					h.remove(conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// remove drops conn and stops its writer. Caller holds the mutex.
func (h *Hub) remove(conn Conn) {
	if c, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(c.send)
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Debug().Err(err).Msg("ws write failed")
			h.Unregister <- c.conn
			// drain until Run closes the queue
			for range c.send {
			}
			return
		}
	}
}
