package hub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/soar/joypadview/internal/joypad"
)

const fullSyncInterval = 5 * time.Second

// Broadcaster listens for port snapshot changes and distributes them
// to the hub's clients, with a periodic resync for late joiners and
// lossy links.
type Broadcaster struct {
	hub     *Hub
	changes <-chan joypad.PortSnapshot

	mu   sync.RWMutex
	last [joypad.MaxUsers]joypad.PortSnapshot
	seq  int64
}

func NewBroadcaster(h *Hub, changes <-chan joypad.PortSnapshot) *Broadcaster {
	return &Broadcaster{
		hub:     h,
		changes: changes,
	}
}

// Run starts the broadcaster loop. Should be run in a goroutine.
func (b *Broadcaster) Run() {
	ticker := time.NewTicker(fullSyncInterval)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-b.changes:
			if !ok {
				return
			}
			b.mu.Lock()
			if snap.Port >= 0 && snap.Port < joypad.MaxUsers {
				b.last[snap.Port] = snap
			}
			b.seq++
			seq := b.seq
			b.mu.Unlock()
			b.send(seq, snap)

		case <-ticker.C:
			b.mu.Lock()
			resync := b.last
			b.seq++
			seq := b.seq
			b.mu.Unlock()
			for _, snap := range resync {
				if snap.Connected {
					b.send(seq, snap)
				}
			}
		}
	}
}

// SendInitialState pushes the subscribed port's current state to a
// newly connected or re-subscribed client.
func (b *Broadcaster) SendInitialState(c *Client) {
	b.mu.Lock()
	b.seq++
	seq := b.seq
	snap := b.last[c.port.Load()]
	b.mu.Unlock()

	msg := NewStateMessage(seq, &snap)
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling initial state: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (b *Broadcaster) send(seq int64, snap joypad.PortSnapshot) {
	msg := NewStateMessage(seq, &snap)
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling state message: %v", err)
		return
	}
	b.hub.BroadcastToPort(data, snap.Port)
}
