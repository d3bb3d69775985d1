package joypad

import (
	"errors"
	"fmt"
	"log"
)

const identXInput = "xinput"

// errDeviceNotConnected is the native status for an empty vendor user
// slot.
const errDeviceNotConnected uint32 = 1167

// XInputState mirrors the vendor API's native state struct.
type XInputState struct {
	PacketNumber uint32
	Buttons      uint16
	LeftTrigger  uint8
	RightTrigger uint8
	ThumbLX      int16
	ThumbLY      int16
	ThumbRX      int16
	ThumbRY      int16
}

// Vibration carries the two rumble motor magnitudes submitted
// together on every rumble call.
type Vibration struct {
	LeftMotor  uint16
	RightMotor uint16
}

// GetStateFunc reads one user's state; it returns the native status
// code, errDeviceNotConnected for an empty slot.
type GetStateFunc func(user uint32, st *XInputState) uint32

// SetStateFunc submits both motor magnitudes for one user.
type SetStateFunc func(user uint32, vib *Vibration) uint32

// EntryPoints are the resolved vendor module exports. GetStateEx is
// the extended read (exported by ordinal only); it is nil when the
// module carries just the base export, costing guide button support.
type EntryPoints struct {
	GetStateEx GetStateFunc
	GetState   GetStateFunc
	SetState   SetStateFunc
	Close      func()
}

// VendorResolver loads the vendor module and resolves its entry
// points. The real resolver walks the platform's module search chain;
// tests substitute canned entry points.
type VendorResolver interface {
	Resolve() (*EntryPoints, error)
}

// Vendor button bitmask, indexed by logical button number. The guide
// button comes last so a capability downgrade just shortens the table.
var vendorButtonBits = [...]uint16{
	0x1000, // A
	0x2000, // B
	0x4000, // X
	0x8000, // Y
	0x0100, // left shoulder
	0x0200, // right shoulder
	0x0010, // start
	0x0020, // back
	0x0040, // left thumb
	0x0080, // right thumb
	0x0400, // guide
}

// Dpad bits, served through hat 0.
const (
	vendorDpadUp    uint16 = 0x0001
	vendorDpadDown  uint16 = 0x0002
	vendorDpadLeft  uint16 = 0x0004
	vendorDpadRight uint16 = 0x0008
)

type vendorPad struct {
	state     XInputState
	connected bool
}

// XInputConfig wires the vendor backend. Legacy is optional: when
// present the two backends coexist and unhandled ports pass through to
// it.
type XInputConfig struct {
	Resolver VendorResolver
	Notifier Notifier
	// Reconciler must be the instance shared with Legacy when both
	// are present.
	Reconciler *Reconciler
	Legacy     *DInput
	// TolerateEmpty keeps Init successful with zero connected users,
	// for platform variants where pads are hot-plugged only after
	// startup.
	TolerateEmpty bool
}

// XInput is the vendor gamepad backend: four fixed hardware-numbered
// user slots, optionally composed over the legacy backend.
type XInput struct {
	resolver      VendorResolver
	notify        Notifier
	rec           *Reconciler
	legacy        *DInput
	tolerateEmpty bool

	ep         *EntryPoints
	getState   GetStateFunc
	guide      bool
	numButtons int

	pads   [vendorUserCount]vendorPad
	rumble [vendorUserCount]Vibration
	active bool
}

func NewXInput(cfg XInputConfig) *XInput {
	x := &XInput{
		resolver:      cfg.Resolver,
		notify:        cfg.Notifier,
		rec:           cfg.Reconciler,
		legacy:        cfg.Legacy,
		tolerateEmpty: cfg.TolerateEmpty,
	}
	if x.notify == nil {
		x.notify = NopNotifier{}
	}
	if x.rec == nil {
		if x.legacy != nil {
			x.rec = x.legacy.Reconciler()
		} else {
			x.rec = NewReconciler()
		}
	}
	return x
}

func (x *XInput) Ident() string { return identXInput }

// userFor resolves a logical port to a vendor user index, -1 when the
// port is not this backend's to service.
func (x *XInput) userFor(port uint) int {
	if x.legacy != nil {
		return x.rec.VendorUser(port)
	}
	if port < vendorUserCount && x.pads[port].connected {
		return int(port)
	}
	return -1
}

func (x *XInput) Init() error {
	ep, err := x.resolver.Resolve()
	if err != nil {
		return fmt.Errorf("vendor module: %w", err)
	}
	x.ep = ep

	x.getState = ep.GetStateEx
	x.guide = true
	if x.getState == nil {
		// No extended export; presumably a wrapper module. Fall back
		// to the base read at the cost of the guide button.
		x.guide = false
		x.getState = ep.GetState
		if x.getState == nil {
			x.close()
			return errors.New("vendor module exports no state read")
		}
		log.Printf("[XInput] no guide button support")
	}
	if ep.SetState == nil {
		x.close()
		return errors.New("vendor module exports no rumble entry point")
	}
	x.numButtons = len(vendorButtonBits)
	if !x.guide {
		x.numButtons--
	}

	anyConnected := false
	for i := range x.pads {
		x.pads[i] = vendorPad{}
		x.pads[i].connected =
			x.getState(uint32(i), &x.pads[i].state) != errDeviceNotConnected
		anyConnected = anyConnected || x.pads[i].connected
	}
	if !anyConnected && !x.tolerateEmpty {
		x.close()
		return errors.New("no vendor pads connected")
	}

	if x.legacy != nil {
		x.rec.SetBlockPads(true)
		if err := x.legacy.Init(); err != nil {
			x.rec.SetBlockPads(false)
			x.close()
			return fmt.Errorf("legacy coexistence: %w", err)
		}
	}

	for port := uint(0); port < MaxUsers; port++ {
		user := x.userFor(port)
		if user < 0 {
			continue
		}
		var vid, pid uint16
		if x.legacy != nil {
			// The enumerating side saw the device identity; recover it
			// through the redirection table.
			vid, pid, _, _ = x.legacy.VendorPadIdentity(user)
		}
		x.notify.Connect(x.Name(port), "", identXInput, port, vid, pid)
	}

	x.active = true
	return nil
}

func (x *XInput) Poll() {
	if !x.active {
		return
	}
	for i := range x.pads {
		connected := x.getState(uint32(i), &x.pads[i].state) != errDeviceNotConnected
		if connected == x.pads[i].connected {
			continue
		}
		if x.legacy == nil && connected {
			// Without the enumerating backend, user numbering is only
			// knowable at plug time: rebuild the whole backend.
			x.Destroy()
			if err := x.Init(); err != nil {
				log.Printf("[XInput] reinit after hot-plug: %v", err)
			}
			return
		}
		x.pads[i].connected = connected
		if !connected {
			x.notify.Disconnect(uint(i), x.Name(uint(i)))
		}
	}

	if x.legacy != nil {
		x.legacy.Poll()
	}
}

func (x *XInput) QueryPad(port uint) bool {
	if user := x.userFor(port); user >= 0 {
		return x.pads[user].connected
	}
	if x.legacy != nil {
		return x.legacy.QueryPad(port)
	}
	return false
}

// buttonState decodes one key against a user's button word. The dpad
// is served as hat 0.
func (x *XInput) buttonState(btnWord uint16, key Key) bool {
	if hat, dir, ok := key.Hat(); ok {
		if hat != 0 {
			return false
		}
		switch dir {
		case HatUp:
			return btnWord&vendorDpadUp != 0
		case HatDown:
			return btnWord&vendorDpadDown != 0
		case HatLeft:
			return btnWord&vendorDpadLeft != 0
		case HatRight:
			return btnWord&vendorDpadRight != 0
		}
		return false
	}
	if int(key) >= x.numButtons {
		return false
	}
	return btnWord&vendorButtonBits[key] != 0
}

func (x *XInput) Button(port uint, key Key) bool {
	user := x.userFor(port)
	if user < 0 {
		if x.legacy != nil {
			return x.legacy.Button(port, key)
		}
		return false
	}
	if !x.pads[user].connected || key == NoKey {
		return false
	}
	return x.buttonState(x.pads[user].state.Buttons, key)
}

// axisState decodes an axis selector against a user's native state.
// Stick Y axes are inverted to match the legacy backend's orientation;
// triggers exist on the positive half only, rescaled from 0..255.
func axisState(st *XInputState, axis AxisSelector) int16 {
	var (
		val    int32
		xaxis  = -1
		isNeg  bool
		isPos  bool
	)
	if n := axis.NegGet(); n <= 3 {
		xaxis = int(n)
		isNeg = true
	} else if p := axis.PosGet(); p <= 5 {
		xaxis = int(p)
		isPos = true
	}

	switch xaxis {
	case 0:
		val = int32(st.ThumbLX)
	case 1:
		val = int32(st.ThumbLY)
	case 2:
		val = int32(st.ThumbRX)
	case 3:
		val = int32(st.ThumbRY)
	case 4:
		val = int32(st.LeftTrigger) * 0x7FFF / 0xFF
	case 5:
		val = int32(st.RightTrigger) * 0x7FFF / 0xFF
	default:
		return 0
	}

	if isNeg && val > 0 {
		val = 0
	} else if isPos && val < 0 {
		val = 0
	}
	if xaxis == 1 || xaxis == 3 {
		if val == -0x8000 {
			val = -0x7FFF
		}
		val = -val
	}
	return int16(val)
}

func (x *XInput) Axis(port uint, axis AxisSelector) int16 {
	user := x.userFor(port)
	if user < 0 {
		if x.legacy != nil {
			return x.legacy.Axis(port, axis)
		}
		return 0
	}
	if !x.pads[user].connected || axis == AxisNone {
		return 0
	}
	return axisState(&x.pads[user].state, axis)
}

// State is the aggregate bitmask meta-query: for every bind slot the
// effective key binding (explicit, else auto-detected) and the
// effective axis binding are resolved the same way, and the slot's bit
// is set when either check passes.
func (x *XInput) State(info *Info, binds *[MaxBinds]Bind, port uint) uint16 {
	if info == nil || binds == nil {
		return 0
	}
	portIdx := info.JoyIdx
	user := x.userFor(portIdx)
	if user < 0 {
		if x.legacy != nil {
			return x.legacy.State(info, binds, portIdx)
		}
		return 0
	}
	if !x.pads[user].connected {
		return 0
	}

	st := &x.pads[user].state
	var ret uint16
	for i := 0; i < MaxBinds; i++ {
		key := binds[i].Key
		if key == NoKey {
			key = info.AutoBinds[i].Key
		}
		axis := binds[i].Axis
		if axis == AxisNone {
			axis = info.AutoBinds[i].Axis
		}
		if key != NoKey && x.buttonState(st.Buttons, key) {
			ret |= 1 << i
		} else if axis != AxisNone &&
			axisPassesThreshold(axisState(st, axis), info.AxisThreshold) {
			ret |= 1 << i
		}
	}
	return ret
}

func (x *XInput) Rumble(port uint, effect RumbleEffect, strength uint16) bool {
	user := x.userFor(port)
	if user < 0 {
		if x.legacy != nil {
			return x.legacy.Rumble(port, effect, strength)
		}
		return false
	}

	switch effect {
	case RumbleStrong:
		// The low frequency (left) motor is the strong one.
		x.rumble[user].LeftMotor = strength
	case RumbleWeak:
		x.rumble[user].RightMotor = strength
	default:
		return false
	}

	if x.ep == nil || x.ep.SetState == nil {
		return false
	}
	return x.ep.SetState(uint32(user), &x.rumble[user]) == 0
}

func (x *XInput) Name(port uint) string {
	if x.legacy != nil {
		// The enumerating side can name the actual device.
		return x.legacy.Name(port)
	}
	if x.userFor(port) < 0 {
		return ""
	}
	// Generic name: plenty of non-Xbox pads present this API.
	return "XInput Controller"
}

func (x *XInput) close() {
	if x.ep != nil && x.ep.Close != nil {
		x.ep.Close()
	}
	x.ep = nil
	x.getState = nil
}

func (x *XInput) Destroy() {
	for i := range x.pads {
		x.pads[i] = vendorPad{}
		x.rumble[i] = Vibration{}
	}
	x.close()
	if x.legacy != nil {
		x.legacy.Destroy()
		x.rec.SetBlockPads(false)
	}
	x.active = false
}
