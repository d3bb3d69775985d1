package joypad

import "testing"

type recordConn struct {
	sent    [][]byte
	sendErr error
}

func (c *recordConn) Send(report []byte) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, append([]byte(nil), report...))
	return nil
}

type countingPoller struct{ polls int }

func (p *countingPoller) PollAll() { p.polls++ }

func newTestApple() *Apple {
	state := &SharedPadState{}
	return NewApple(AppleConfig{
		State:    state,
		Families: KnownFamilies(state),
	})
}

func TestAppleSlotLifecycle(t *testing.T) {
	a := newTestApple()
	if err := a.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	s0 := a.Connect("Nintendo RVL-CNT-01", &recordConn{})
	s1 := a.Connect("PLAYSTATION(R)3 Controller", &recordConn{})
	if s0 != 0 || s1 != 1 {
		t.Fatalf("slots = %d, %d, want 0, 1", s0, s1)
	}
	if !a.HasInterface(s0) || !a.HasInterface(s1) {
		t.Errorf("family bindings missing")
	}

	// The freed slot is the lowest vacant one and comes back first.
	a.Disconnect(s0)
	if a.HasInterface(s0) {
		t.Errorf("disconnected slot still has an interface")
	}
	if got := a.Connect("PLAYSTATION(R)3 Controller", &recordConn{}); got != 0 {
		t.Errorf("reconnect took slot %d, want 0", got)
	}
}

func TestAppleConnectUnknownDevice(t *testing.T) {
	a := newTestApple()
	slot := a.Connect("Mystery Gamepad", &recordConn{})
	if slot != 0 {
		t.Fatalf("slot = %d, want 0", slot)
	}
	// The slot is claimed but carries no interface.
	if a.HasInterface(slot) {
		t.Errorf("unknown device matched a family")
	}
	if got := a.Connect("Nintendo RVL-CNT-01", &recordConn{}); got != 1 {
		t.Errorf("next device took slot %d, want 1", got)
	}
	if a.Connect("", &recordConn{}) != 2 {
		t.Errorf("empty name should still claim a slot")
	}
}

func TestAppleConnectExternal(t *testing.T) {
	a := newTestApple()
	slot := a.ConnectExternal()
	if slot != 0 {
		t.Fatalf("slot = %d, want 0", slot)
	}
	if a.HasInterface(slot) {
		t.Errorf("framework-managed device should carry no binding")
	}
	a.Disconnect(slot)
	if a.ConnectExternal() != 0 {
		t.Errorf("freed slot not reused")
	}
}

func TestAppleCapacityExhausted(t *testing.T) {
	a := newTestApple()
	for i := 0; i < MaxUsers; i++ {
		if got := a.ConnectExternal(); got != i {
			t.Fatalf("slot %d came back as %d", i, got)
		}
	}
	if got := a.Connect("Nintendo RVL-CNT-01", &recordConn{}); got != -1 {
		t.Errorf("Connect at capacity = %d, want -1", got)
	}
	if got := a.ConnectExternal(); got != -1 {
		t.Errorf("ConnectExternal at capacity = %d, want -1", got)
	}
}

func TestAppleWiiPacketDecode(t *testing.T) {
	a := newTestApple()
	slot := a.Connect("Nintendo RVL-CNT-01", &recordConn{})

	// Core buttons report: dpad left + plus on the first byte, A face +
	// minus on the second.
	a.DispatchPacket(slot, []byte{0xA1, 0x30, 0x01 | 0x10, 0x08 | 0x10})

	buttons := a.SharedState().Buttons[slot]
	want := padBitLeft | padBitStart | padBitX | padBitSelect
	if buttons != want {
		t.Errorf("buttons = %#x, want %#x", buttons, want)
	}
	if !a.Button(uint(slot), 6) { // padBitLeft
		t.Errorf("left direction not readable through Button")
	}

	// Wrong report id leaves the state alone.
	a.DispatchPacket(slot, []byte{0xA1, 0x31, 0xFF, 0xFF})
	if a.SharedState().Buttons[slot] != want {
		t.Errorf("state changed by a non-core-buttons report")
	}

	// Truncated packets are dropped.
	a.DispatchPacket(slot, []byte{0xA1, 0x30, 0x01})
	if a.SharedState().Buttons[slot] != want {
		t.Errorf("state changed by a truncated report")
	}
}

func TestApplePS3PacketDecode(t *testing.T) {
	a := newTestApple()
	slot := a.Connect("PLAYSTATION(R)3 Controller", &recordConn{})

	packet := []byte{
		0xA1, 0x01, 0x00,
		0x08 | 0x10, // start + dpad up
		0x40,        // cross
		0x00,
		0xFF, 0x00, 0x80, 0x80, // sticks
	}
	a.DispatchPacket(slot, packet)

	buttons := a.SharedState().Buttons[slot]
	want := padBitStart | padBitUp | padBitB
	if buttons != want {
		t.Errorf("buttons = %#x, want %#x", buttons, want)
	}

	axes := a.SharedState().Axes[slot]
	if axes[0] != 0x7F00 || axes[1] != -0x8000 || axes[2] != 0 || axes[3] != 0 {
		t.Errorf("axes = %v", axes)
	}
	if got := a.Axis(uint(slot), PosAxis(0)); got != 0x7F00 {
		t.Errorf("PosAxis(0) = %d, want 32512", got)
	}
	if got := a.Axis(uint(slot), NegAxis(1)); got != -0x8000 {
		t.Errorf("NegAxis(1) = %d, want -32768", got)
	}
	if got := a.Axis(uint(slot), PosAxis(1)); got != 0 {
		t.Errorf("PosAxis(1) = %d, want 0 for a negative reading", got)
	}
}

func TestAppleDisconnectClearsState(t *testing.T) {
	a := newTestApple()
	slot := a.Connect("Nintendo RVL-CNT-01", &recordConn{})
	a.DispatchPacket(slot, []byte{0xA1, 0x30, 0x01, 0x00})
	if a.SharedState().Buttons[slot] == 0 {
		t.Fatalf("decode did not land")
	}

	a.Disconnect(slot)
	if a.SharedState().Buttons[slot] != 0 {
		t.Errorf("shared state not cleared on disconnect")
	}

	// Dispatch to the freed slot is a no-op.
	a.DispatchPacket(slot, []byte{0xA1, 0x30, 0x01, 0x00})
	if a.SharedState().Buttons[slot] != 0 {
		t.Errorf("freed slot still decoding packets")
	}
}

func TestApplePS3Rumble(t *testing.T) {
	a := newTestApple()
	conn := &recordConn{}
	slot := a.Connect("PLAYSTATION(R)3 Controller", conn)

	if !a.Rumble(uint(slot), RumbleStrong, 0xFF00) {
		t.Fatalf("strong rumble rejected")
	}
	if !a.Rumble(uint(slot), RumbleWeak, 1) {
		t.Fatalf("weak rumble rejected")
	}
	if len(conn.sent) != 2 {
		t.Fatalf("got %d output reports, want 2", len(conn.sent))
	}
	if conn.sent[0][5] != 0xFF {
		t.Errorf("strong report large motor byte = %#x", conn.sent[0][5])
	}
	if conn.sent[1][3] != 0x01 {
		t.Errorf("weak report small motor byte = %#x", conn.sent[1][3])
	}

	if a.Rumble(uint(slot), rumbleEffectCount, 1) {
		t.Errorf("unsupported effect kind must report false")
	}
	if a.Rumble(5, RumbleStrong, 1) {
		t.Errorf("vacant slot must report false")
	}
}

func TestAppleRumbleWithoutInterface(t *testing.T) {
	a := newTestApple()
	slot := a.Connect("Nintendo RVL-CNT-01", &recordConn{})
	if a.Rumble(uint(slot), RumbleStrong, 1) {
		t.Errorf("family without force feedback must report false")
	}
	ext := a.ConnectExternal()
	if a.Rumble(uint(ext), RumbleStrong, 1) {
		t.Errorf("framework-managed slot must report false")
	}
}

func TestAppleDestroySilencesRumble(t *testing.T) {
	a := newTestApple()
	conn := &recordConn{}
	a.Connect("PLAYSTATION(R)3 Controller", conn)
	wii := a.Connect("Nintendo RVL-CNT-01", &recordConn{})

	a.Destroy()
	if len(conn.sent) != 2 {
		t.Fatalf("got %d silencing reports, want one per motor", len(conn.sent))
	}
	for _, report := range conn.sent {
		if report[3] != 0x00 || report[5] != 0x00 {
			t.Errorf("silencing report drives a motor: %v", report)
		}
	}
	// Destroy silences, the slots themselves stay with the disconnect
	// path.
	if !a.HasInterface(wii) {
		t.Errorf("Destroy tore a slot down")
	}
}

func TestApplePollDelegates(t *testing.T) {
	state := &SharedPadState{}
	poller := &countingPoller{}
	a := NewApple(AppleConfig{State: state, Poller: poller})
	a.Poll()
	a.Poll()
	if poller.polls != 2 {
		t.Errorf("polls = %d, want 2", poller.polls)
	}
}

func TestAppleButtonBounds(t *testing.T) {
	a := newTestApple()
	slot := a.ConnectExternal()
	a.SharedState().Buttons[slot] = 1<<31 | 1

	if !a.Button(uint(slot), 0) {
		t.Errorf("bit 0 not readable")
	}
	if !a.Button(uint(slot), 31) {
		t.Errorf("bit 31 not readable")
	}
	if a.Button(uint(slot), 32) {
		t.Errorf("keys past 32 must read false")
	}
	if a.Button(uint(slot), HatKey(0, HatUp)) {
		t.Errorf("hat keys are not served by this backend")
	}
	if a.Button(MaxUsers, 0) {
		t.Errorf("out-of-range port must read false")
	}

	if a.HasInterface(-1) || a.HasInterface(MaxUsers) {
		t.Errorf("out-of-range slots must fail closed")
	}
	a.Disconnect(-1)
	a.Disconnect(MaxUsers)
	a.DispatchPacket(-1, []byte{0xA1, 0x30, 0, 0})
}
