package hub

import (
	"time"

	"github.com/soar/joypadview/internal/joypad"
)

// WSMessage is a server-to-client WebSocket message.
type WSMessage struct {
	Type      string               `json:"type"` // "state", "port_selected"
	Seq       int64                `json:"seq"`
	Timestamp int64                `json:"timestamp"`
	Data      *joypad.PortSnapshot `json:"data,omitempty"`
	Port      int                  `json:"port,omitempty"`
}

// NewStateMessage wraps one port snapshot.
func NewStateMessage(seq int64, snap *joypad.PortSnapshot) *WSMessage {
	return &WSMessage{
		Type:      "state",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Data:      snap,
	}
}

// NewPortSelectedMessage confirms a client's port subscription.
func NewPortSelectedMessage(port int) *WSMessage {
	return &WSMessage{
		Type:      "port_selected",
		Timestamp: time.Now().UnixMilli(),
		Port:      port,
	}
}

// ClientMessage is a client-to-server message.
type ClientMessage struct {
	Type string `json:"type"`
	Port int    `json:"port,omitempty"`
}
