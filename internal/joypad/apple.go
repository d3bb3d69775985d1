package joypad

import "strings"

const identAppleIOS = "apple_ios"

const frameworkAxisCount = 4

// SharedPadState is the process-wide decoded pad state the platform
// controller framework fills from its callbacks. The backend only ever
// reads it.
type SharedPadState struct {
	Buttons [MaxUsers]uint32
	Axes    [MaxUsers][frameworkAxisCount]int16
}

// FrameworkPoller is the framework's own polling entry point, run once
// per frame.
type FrameworkPoller interface {
	PollAll()
}

// PadConnection is the transport reaching a streamed controller, used
// by family bindings to send output reports.
type PadConnection interface {
	Send(report []byte) error
}

// PadFamily recognizes one known controller family by name prefix and
// creates per-device bindings for it.
type PadFamily interface {
	// Match reports whether the family services a device with the
	// given reported name.
	Match(name string) bool

	Connect(conn PadConnection, slot int) PadBinding
}

// PadBinding is one live family-specific device binding.
type PadBinding interface {
	Disconnect()

	// HandlePacket consumes one raw input report from the device's
	// streaming transport.
	HandlePacket(data []byte)
}

// PadRumbler is implemented by bindings whose family supports force
// feedback.
type PadRumbler interface {
	SetRumble(effect RumbleEffect, strength uint16) bool
}

// appleSlot is one logical device slot. A slot is used iff it holds a
// live binding or an externally managed device; the binding is owned
// exclusively while used and released exactly once on disconnect.
type appleSlot struct {
	used    bool
	binding PadBinding
	// external marks devices the controller framework manages itself;
	// those carry no binding and no packet stream.
	external bool
}

// AppleConfig wires the mobile-framework backend.
type AppleConfig struct {
	State    *SharedPadState
	Poller   FrameworkPoller
	Families []PadFamily
	Notifier Notifier
}

// Apple is the mobile controller-framework backend. Discovery is
// push-based: the platform reports connections and the slot table
// records them; polling just delegates to the framework.
type Apple struct {
	state    *SharedPadState
	poller   FrameworkPoller
	families []PadFamily
	notify   Notifier
	slots    [MaxUsers]appleSlot
}

func NewApple(cfg AppleConfig) *Apple {
	a := &Apple{
		state:    cfg.State,
		poller:   cfg.Poller,
		families: cfg.Families,
		notify:   cfg.Notifier,
	}
	if a.state == nil {
		a.state = &SharedPadState{}
	}
	if a.notify == nil {
		a.notify = NopNotifier{}
	}
	return a
}

// SharedState exposes the decoded state table for the framework
// callback side.
func (a *Apple) SharedState() *SharedPadState { return a.state }

func (a *Apple) findVacant() int {
	for i := range a.slots {
		if a.slots[i].used {
			continue
		}
		a.slots[i] = appleSlot{}
		return i
	}
	return -1
}

// Connect claims a slot for a streamed controller, matching the
// reported name against the known family table. A device matching no
// family keeps its slot but exposes no interface. Returns the slot
// index, -1 when capacity is exhausted.
func (a *Apple) Connect(name string, conn PadConnection) int {
	slot := a.findVacant()
	if slot < 0 || slot >= MaxUsers {
		return slot
	}
	s := &a.slots[slot]
	s.used = true

	for _, fam := range a.families {
		if name != "" && fam.Match(name) {
			s.binding = fam.Connect(conn, slot)
			break
		}
	}
	return slot
}

// ConnectExternal claims a slot for a device the controller framework
// manages itself.
func (a *Apple) ConnectExternal() int {
	slot := a.findVacant()
	if slot >= 0 && slot < MaxUsers {
		a.slots[slot].used = true
		a.slots[slot].external = true
	}
	return slot
}

// Disconnect tears a slot down, releasing the binding before clearing
// the slot. Out-of-range and unused slots are ignored.
func (a *Apple) Disconnect(slot int) {
	if slot < 0 || slot >= MaxUsers || !a.slots[slot].used {
		return
	}
	s := &a.slots[slot]
	if s.binding != nil {
		s.binding.Disconnect()
	}
	a.slots[slot] = appleSlot{}
}

// DispatchPacket forwards one raw report to the slot's bound
// interface. A no-op unless the slot is used and has a binding.
func (a *Apple) DispatchPacket(slot int, data []byte) {
	if slot < 0 || slot >= MaxUsers || !a.slots[slot].used {
		return
	}
	if b := a.slots[slot].binding; b != nil {
		b.HandlePacket(data)
	}
}

// HasInterface reports whether a used slot carries a family binding.
func (a *Apple) HasInterface(slot int) bool {
	if slot < 0 || slot >= MaxUsers || !a.slots[slot].used {
		return false
	}
	return a.slots[slot].binding != nil
}

func (a *Apple) Ident() string { return identAppleIOS }

// Init always succeeds: there is nothing to enumerate up front, the
// framework reports devices as they appear.
func (a *Apple) Init() error { return nil }

func (a *Apple) QueryPad(port uint) bool { return port < MaxUsers }

func (a *Apple) Poll() {
	if a.poller != nil {
		a.poller.PollAll()
	}
}

func (a *Apple) Button(port uint, key Key) bool {
	if port >= MaxUsers || key == NoKey {
		return false
	}
	if _, _, isHat := key.Hat(); isHat {
		return false
	}
	if key >= 32 {
		return false
	}
	return a.state.Buttons[port]&(1<<key) != 0
}

func (a *Apple) Axis(port uint, axis AxisSelector) int16 {
	if port >= MaxUsers || axis == AxisNone {
		return 0
	}
	var val int16
	if n := axis.NegGet(); n < frameworkAxisCount {
		val = a.state.Axes[port][n]
		if val > 0 {
			val = 0
		}
	} else if p := axis.PosGet(); p < frameworkAxisCount {
		val = a.state.Axes[port][p]
		if val < 0 {
			val = 0
		}
	}
	return val
}

func (a *Apple) Rumble(port uint, effect RumbleEffect, strength uint16) bool {
	if port >= MaxUsers || effect >= rumbleEffectCount || !a.slots[port].used {
		return false
	}
	if r, ok := a.slots[port].binding.(PadRumbler); ok {
		return r.SetRumble(effect, strength)
	}
	return false
}

func (a *Apple) Name(port uint) string { return "" }

// Destroy silences rumble on every slot with a rumble-capable
// interface. Slot teardown itself stays with the explicit disconnect
// path.
func (a *Apple) Destroy() {
	for i := range a.slots {
		if !a.slots[i].used {
			continue
		}
		if r, ok := a.slots[i].binding.(PadRumbler); ok {
			r.SetRumble(RumbleStrong, 0)
			r.SetRumble(RumbleWeak, 0)
		}
	}
}

// prefixFamily is the common Match implementation: a substring check
// of the reported device name.
type prefixFamily string

func (p prefixFamily) Match(name string) bool {
	return strings.Contains(name, string(p))
}
