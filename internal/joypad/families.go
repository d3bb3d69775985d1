package joypad

// Logical button bit positions shared by the streamed pad decoders.
// The layout follows the frontend's standard pad: face buttons, menu
// buttons, then the four directions.
const (
	padBitB uint32 = 1 << iota
	padBitY
	padBitSelect
	padBitStart
	padBitUp
	padBitDown
	padBitLeft
	padBitRight
	padBitA
	padBitX
	padBitL
	padBitR
	padBitL2
	padBitR2
	padBitL3
	padBitR3
)

// KnownFamilies is the ordered table of controller families the slot
// table matches reported device names against.
func KnownFamilies(state *SharedPadState) []PadFamily {
	return []PadFamily{
		&wiiFamily{state: state},
		&ps3Family{state: state},
	}
}

// wiiFamily services Nintendo Wii remotes delivered over a streaming
// transport.
type wiiFamily struct {
	state *SharedPadState
}

func (f *wiiFamily) Match(name string) bool {
	return prefixFamily("Nintendo RVL-CNT-01").Match(name)
}

func (f *wiiFamily) Connect(conn PadConnection, slot int) PadBinding {
	return &wiiBinding{state: f.state, conn: conn, slot: slot}
}

type wiiBinding struct {
	state *SharedPadState
	conn  PadConnection
	slot  int
}

// HandlePacket decodes a core-buttons input report: transport header,
// report id, then two button bytes.
func (b *wiiBinding) HandlePacket(data []byte) {
	if len(data) < 4 || data[1] != 0x30 {
		return
	}
	var buttons uint32
	b0, b1 := data[2], data[3]

	if b0&0x01 != 0 {
		buttons |= padBitLeft
	}
	if b0&0x02 != 0 {
		buttons |= padBitRight
	}
	if b0&0x04 != 0 {
		buttons |= padBitDown
	}
	if b0&0x08 != 0 {
		buttons |= padBitUp
	}
	if b0&0x10 != 0 {
		buttons |= padBitStart // plus
	}
	if b1&0x01 != 0 {
		buttons |= padBitA // two
	}
	if b1&0x02 != 0 {
		buttons |= padBitB // one
	}
	if b1&0x04 != 0 {
		buttons |= padBitY // B trigger
	}
	if b1&0x08 != 0 {
		buttons |= padBitX // A face
	}
	if b1&0x10 != 0 {
		buttons |= padBitSelect // minus
	}

	b.state.Buttons[b.slot] = buttons
}

func (b *wiiBinding) Disconnect() {
	b.state.Buttons[b.slot] = 0
	b.state.Axes[b.slot] = [frameworkAxisCount]int16{}
}

// ps3Family services the PLAYSTATION(R)3 controller.
type ps3Family struct {
	state *SharedPadState
}

func (f *ps3Family) Match(name string) bool {
	return prefixFamily("PLAYSTATION(R)3 Controller").Match(name)
}

func (f *ps3Family) Connect(conn PadConnection, slot int) PadBinding {
	return &ps3Binding{state: f.state, conn: conn, slot: slot}
}

type ps3Binding struct {
	state *SharedPadState
	conn  PadConnection
	slot  int
}

// centeredByte rescales an unsigned 0..255 stick reading to the signed
// 16-bit axis scale.
func centeredByte(v byte) int16 {
	return int16(int(v)-0x80) << 8
}

// HandlePacket decodes the standard input report: transport header,
// report id, reserved byte, three button bytes, reserved, then the
// four stick bytes.
func (b *ps3Binding) HandlePacket(data []byte) {
	if len(data) < 10 || data[1] != 0x01 {
		return
	}
	var buttons uint32
	b0, b1 := data[3], data[4]

	if b0&0x01 != 0 {
		buttons |= padBitSelect
	}
	if b0&0x02 != 0 {
		buttons |= padBitL3
	}
	if b0&0x04 != 0 {
		buttons |= padBitR3
	}
	if b0&0x08 != 0 {
		buttons |= padBitStart
	}
	if b0&0x10 != 0 {
		buttons |= padBitUp
	}
	if b0&0x20 != 0 {
		buttons |= padBitRight
	}
	if b0&0x40 != 0 {
		buttons |= padBitDown
	}
	if b0&0x80 != 0 {
		buttons |= padBitLeft
	}
	if b1&0x01 != 0 {
		buttons |= padBitL2
	}
	if b1&0x02 != 0 {
		buttons |= padBitR2
	}
	if b1&0x04 != 0 {
		buttons |= padBitL
	}
	if b1&0x08 != 0 {
		buttons |= padBitR
	}
	if b1&0x10 != 0 {
		buttons |= padBitX // triangle
	}
	if b1&0x20 != 0 {
		buttons |= padBitA // circle
	}
	if b1&0x40 != 0 {
		buttons |= padBitB // cross
	}
	if b1&0x80 != 0 {
		buttons |= padBitY // square
	}

	b.state.Buttons[b.slot] = buttons
	b.state.Axes[b.slot][0] = centeredByte(data[6])
	b.state.Axes[b.slot][1] = centeredByte(data[7])
	b.state.Axes[b.slot][2] = centeredByte(data[8])
	b.state.Axes[b.slot][3] = centeredByte(data[9])
}

// SetRumble sends a minimal output report driving the two motors. The
// large motor is the strong effect, the small one the weak effect.
func (b *ps3Binding) SetRumble(effect RumbleEffect, strength uint16) bool {
	if b.conn == nil {
		return false
	}
	report := []byte{0x52, 0x01, 0xFE, 0x00, 0xFE, 0x00}
	switch effect {
	case RumbleWeak:
		if strength > 0 {
			report[3] = 0x01
		}
	case RumbleStrong:
		report[5] = byte(strength >> 8)
	default:
		return false
	}
	return b.conn.Send(report) == nil
}

func (b *ps3Binding) Disconnect() {
	b.state.Buttons[b.slot] = 0
	b.state.Axes[b.slot] = [frameworkAxisCount]int16{}
}
