package hub

import (
	"encoding/json"
	"log"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"github.com/soar/joypadview/internal/joypad"
)

// Client is one connected WebSocket viewer, subscribed to a single
// logical port. The subscription is read by the broadcast side while
// ReadPump rewrites it, so it is atomic.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	port atomic.Int32
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// WritePump sends messages from the send channel to the WebSocket
// connection.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// ReadPump reads client commands until the connection drops.
func (c *Client) ReadPump(b *Broadcaster) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var clientMsg ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			log.Printf("Error parsing client message: %v", err)
			continue
		}

		switch clientMsg.Type {
		case "select_port":
			if clientMsg.Port < 0 || clientMsg.Port >= joypad.MaxUsers {
				log.Printf("Rejected port subscription %d", clientMsg.Port)
				continue
			}
			c.port.Store(int32(clientMsg.Port))
			msg := NewPortSelectedMessage(clientMsg.Port)
			data, _ := json.Marshal(msg)
			c.send <- data
			b.SendInitialState(c)
			log.Printf("Client switched to port %d", clientMsg.Port)
		}
	}
}
