package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/ZSabina88/Serverless-API-Cognito-Integration/utils"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait = 5 * time.Second
	// sendBuffer is how many messages a client may lag behind before it
	// is dropped.
	sendBuffer = 32
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// client owns one connection. Only its writer goroutine writes to conn.
type client struct {
	conn    *websocket.Conn
	subject string
	send    chan []byte
}

// Hub holds the websocket clients listening for table and reservation
// events and fans messages out to them. Broadcast never waits on a
// client's network writes.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

// Register adds a connection and starts its writer. subject identifies the
// authenticated user, or is empty when auth is disabled.
func (h *Hub) Register(conn *websocket.Conn, subject string) {
	c := &client{conn: conn, subject: subject, send: make(chan []byte, sendBuffer)}

	h.mutex.Lock()
	h.clients[conn] = c
	h.mutex.Unlock()

	go c.writePump()
}

// Unregister removes a connection; its writer closes it.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeLocked(conn)
}

func (h *Hub) removeLocked(conn *websocket.Conn) {
	c, ok := h.clients[conn]
	if !ok {
		return
	}
	delete(h.clients, conn)
	close(c.send)
}

func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Publish wraps data in a Message and broadcasts it.
func (h *Hub) Publish(event string, data interface{}) {
	h.Broadcast(Message{Event: event, Data: data})
}

// Broadcast queues msg for every client. A client whose queue is full is
// dropped; the caller never sees the error.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.WithError(err).Error("Error marshaling event message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	utils.InfoLogger.WithFields(logrus.Fields{
		"event":   msg.Event,
		"clients": len(h.clients),
	}).Debug("Broadcasting event")

	for conn, c := range h.clients {
		select {
		case c.send <- data:
		default:
			utils.ErrorLogger.WithFields(logrus.Fields{
				"event":   msg.Event,
				"subject": c.subject,
			}).Warn("Event client too slow, dropping it")
			h.removeLocked(conn)
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.WithField("subject", c.subject).WithError(err).Warn("Error sending event to client")
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}
