package hub

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/soar/joypadview/internal/joypad"
)

func waitForClients(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		h.mu.RLock()
		n := len(h.clients)
		h.mu.RUnlock()
		if n == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("hub never reached %d clients", want)
}

func TestBroadcastToPortFilters(t *testing.T) {
	h := NewHub()
	go h.Run()

	c1 := NewClient(h, nil)
	c1.port.Store(1)
	c2 := NewClient(h, nil)
	c2.port.Store(2)
	h.Register(c1)
	h.Register(c2)
	waitForClients(t, h, 2)

	h.BroadcastToPort([]byte(`{"type":"state"}`), 1)

	select {
	case <-c1.send:
	case <-time.After(time.Second):
		t.Fatalf("subscribed client got nothing")
	}
	select {
	case msg := <-c2.send:
		t.Fatalf("client on another port got %s", msg)
	default:
	}
}

func TestBroadcastDuringPortSwitch(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := NewClient(h, nil)
	c.port.Store(0)
	h.Register(c)
	waitForClients(t, h, 1)

	// Broadcasts race against subscription changes; the port read on
	// the broadcast side must stay coherent.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			h.BroadcastToPort([]byte(`{"type":"state"}`), i%joypad.MaxUsers)
		}
	}()
	for i := 0; i < 100; i++ {
		c.port.Store(int32(i % joypad.MaxUsers))
	}
	<-done

	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}

func TestBroadcasterTracksSnapshots(t *testing.T) {
	h := NewHub()
	go h.Run()
	changes := make(chan joypad.PortSnapshot)
	b := NewBroadcaster(h, changes)

	c := NewClient(h, nil)
	c.port.Store(3)
	h.Register(c)
	waitForClients(t, h, 1)

	go b.Run()
	changes <- joypad.PortSnapshot{Port: 3, Connected: true, Buttons: 0x11, Driver: "dinput"}

	var msg WSMessage
	select {
	case data := <-c.send:
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("no state message broadcast")
	}
	if msg.Type != "state" || msg.Data == nil || msg.Data.Buttons != 0x11 {
		t.Errorf("message = %+v", msg)
	}
	firstSeq := msg.Seq

	// A re-subscribing client gets the retained snapshot with a fresh
	// sequence number.
	b.SendInitialState(c)
	select {
	case data := <-c.send:
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("no initial state sent")
	}
	if msg.Data == nil || msg.Data.Port != 3 || msg.Data.Buttons != 0x11 {
		t.Errorf("initial state = %+v", msg)
	}
	if msg.Seq <= firstSeq {
		t.Errorf("sequence did not advance: %d then %d", firstSeq, msg.Seq)
	}
}
