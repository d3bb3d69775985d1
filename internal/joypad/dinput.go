package joypad

import (
	"errors"
	"fmt"
	"log"
)

const identDInput = "dinput"

// legacyPad is the per-slot record of the legacy backend. The vendor
// and product identifiers are derived once at enumeration time and
// stay fixed for the device's lifetime.
type legacyPad struct {
	dev      LegacyDevice
	name     string
	friendly string
	vid      uint16
	pid      uint16
	ffb      bool
	effects  [rumbleEffectCount]FFEffect
	state    LegacyState
}

// DInputConfig wires the legacy backend's collaborators. Zero-value
// fields get working defaults at construction.
type DInputConfig struct {
	// API is the legacy enumeration context. Nil selects the platform
	// joystick adapter at Init time.
	API        LegacyContext
	Classifier VendorClassifier
	Notifier   Notifier
	// WindowHandle supplies the native window for exclusive access
	// setup. Nil leaves devices in shared access.
	WindowHandle func() uintptr
	Reconciler   *Reconciler
}

// DInput is the legacy enumerated joystick backend.
type DInput struct {
	api LegacyContext
	// cfgAPI is the injected context, restored on reinit after a
	// Destroy tore the live one down.
	cfgAPI   LegacyContext
	classify VendorClassifier
	notify   Notifier
	window   func() uintptr
	rec      *Reconciler

	pads           [MaxUsers]legacyPad
	count          uint
	lastVendorUser int
	active         bool
}

func NewDInput(cfg DInputConfig) *DInput {
	d := &DInput{
		api:      cfg.API,
		cfgAPI:   cfg.API,
		classify: cfg.Classifier,
		notify:   cfg.Notifier,
		window:   cfg.WindowHandle,
		rec:      cfg.Reconciler,
	}
	if d.classify == nil {
		d.classify = newVendorClassifier()
	}
	if d.notify == nil {
		d.notify = NopNotifier{}
	}
	if d.rec == nil {
		d.rec = NewReconciler()
	}
	return d
}

// Reconciler exposes the redirection table shared with a composed
// vendor backend.
func (d *DInput) Reconciler() *Reconciler { return d.rec }

func (d *DInput) Ident() string { return identDInput }

func (d *DInput) Init() error {
	if d.api == nil {
		d.api = d.cfgAPI
	}
	if d.api == nil {
		api, err := newPlatformLegacyContext()
		if err != nil {
			return fmt.Errorf("legacy context: %w", err)
		}
		d.api = api
	}

	d.count = 0
	d.lastVendorUser = 0
	d.rec.Reset()
	for i := range d.pads {
		d.pads[i] = legacyPad{}
	}

	if err := d.api.EnumDevices(d.enumDevice); err != nil {
		return fmt.Errorf("device enumeration: %w", err)
	}
	d.active = true
	return nil
}

// enumDevice is invoked once per attached device. Returning false
// stops enumeration when capacity is reached.
func (d *DInput) enumDevice(inst DeviceInstance) bool {
	if d.count == MaxUsers {
		return false
	}

	dev, err := d.api.OpenDevice(inst)
	if err != nil {
		return true
	}

	pad := &d.pads[d.count]
	pad.dev = dev
	pad.name = inst.ProductName
	pad.friendly = inst.InstanceName
	pad.vid = uint16(inst.ProductGUID.Data1 % 0x10000)
	pad.pid = uint16(inst.ProductGUID.Data1 / 0x10000)

	if d.rec.BlockPads() && d.classify.IsVendorPad(&inst) {
		// Leave the device entirely to the vendor backend: no access
		// mode, no axis enumeration, no rumble effects and no connect
		// notification from this side.
		if d.lastVendorUser < vendorUserCount {
			d.rec.Assign(int(d.count), d.lastVendorUser)
			d.lastVendorUser++
		}
		d.count++
		return true
	}

	var window uintptr
	if d.window != nil {
		window = d.window()
	}
	if err := dev.SetCooperativeLevel(window, CoopExclusive|CoopBackground); err != nil {
		log.Printf("[DInput] %q: cooperative level: %v", pad.name, err)
	}

	if ffb, err := dev.EnumAxes(); err == nil {
		pad.ffb = ffb
	}
	if pad.ffb {
		d.createRumbleEffects(pad)
	}

	d.notify.Connect(pad.name, pad.friendly, identDInput, d.count, pad.vid, pad.pid)

	d.count++
	return true
}

func (d *DInput) createRumbleEffects(pad *legacyPad) {
	for effect := RumbleEffect(0); effect < rumbleEffectCount; effect++ {
		eff, err := pad.dev.CreateEffect(effect)
		if err != nil {
			continue
		}
		pad.effects[effect] = eff
	}
}

func (d *DInput) Poll() {
	if !d.active {
		return
	}
	d.api.Refresh()

	for i := uint(0); i < d.count; i++ {
		if d.rec.VendorUser(i) >= 0 {
			continue
		}
		pad := &d.pads[i]
		if pad.dev == nil {
			continue
		}

		// The snapshot is overwritten wholesale: a failed read yields
		// an idle tick, never a stale-plus-partial mix.
		pad.state = LegacyState{}

		if err := pad.dev.Poll(); err != nil {
			if pad.dev.Acquire() != nil || pad.dev.Poll() != nil {
				continue
			}
		}

		if err := pad.dev.State(&pad.state); err != nil {
			if errors.Is(err, ErrInputLost) || errors.Is(err, ErrNotAcquired) {
				d.notify.Disconnect(i, pad.friendly)
			}
		}
	}
}

func (d *DInput) QueryPad(port uint) bool {
	return port < d.count && d.pads[port].dev != nil
}

func (d *DInput) Button(port uint, key Key) bool {
	if port >= d.count || key == NoKey {
		return false
	}
	st := &d.pads[port].state

	if hat, dir, ok := key.Hat(); ok {
		if hat >= legacyHatCount {
			return false
		}
		pov := st.POV[hat] & 0xFFFF
		if pov == povCentered {
			return false
		}
		// POV readings are hundredths of degrees clockwise from up.
		switch dir {
		case HatUp:
			return pov >= 31500 || pov <= 4500
		case HatRight:
			return pov >= 4500 && pov <= 13500
		case HatDown:
			return pov >= 13500 && pov <= 22500
		case HatLeft:
			return pov >= 22500 && pov <= 31500
		}
		return false
	}

	if int(key) >= legacyButtonCount {
		return false
	}
	return st.Buttons[key]&0x80 != 0
}

func (d *DInput) Axis(port uint, axis AxisSelector) int16 {
	if port >= d.count || axis == AxisNone {
		return 0
	}
	st := &d.pads[port].state

	var val int32
	if n := axis.NegGet(); n < legacyAxisCount {
		val = st.Axes[n]
		if val > 0 {
			val = 0
		}
	} else if p := axis.PosGet(); p < legacyAxisCount {
		val = st.Axes[p]
		if val < 0 {
			val = 0
		}
	}
	return clampAxis(val)
}

func clampAxis(v int32) int16 {
	if v > 0x7FFF {
		return 0x7FFF
	}
	if v < -0x8000 {
		return -0x8000
	}
	return int16(v)
}

// State is the aggregate bitmask meta-query over all bind slots.
func (d *DInput) State(info *Info, binds *[MaxBinds]Bind, port uint) uint16 {
	if info == nil || binds == nil {
		return 0
	}
	portIdx := info.JoyIdx
	if portIdx >= d.count {
		return 0
	}

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
		if key != NoKey && d.Button(portIdx, key) {
			ret |= 1 << i
		} else if axis != AxisNone &&
			axisPassesThreshold(d.Axis(portIdx, axis), info.AxisThreshold) {
			ret |= 1 << i
		}
	}
	return ret
}

func axisPassesThreshold(v int16, threshold float32) bool {
	mag := int32(v)
	if mag < 0 {
		mag = -mag
	}
	return float32(mag)/0x8000 >= threshold
}

func (d *DInput) Rumble(port uint, effect RumbleEffect, strength uint16) bool {
	if port >= d.count || effect >= rumbleEffectCount {
		return false
	}
	eff := d.pads[port].effects[effect]
	if eff == nil {
		return false
	}
	return eff.SetStrength(strength) == nil
}

func (d *DInput) Name(port uint) string {
	if port >= d.count {
		return ""
	}
	return d.pads[port].name
}

// VendorPadIdentity recovers the vendor and product identifiers of the
// device redirected to the given vendor user, along with its legacy
// slot. The enumerating side is the only one that ever saw them.
func (d *DInput) VendorPadIdentity(user int) (vid, pid uint16, slot int, ok bool) {
	slot, ok = d.rec.LegacySlotFor(user)
	if !ok {
		return 0, 0, 0, false
	}
	return d.pads[slot].vid, d.pads[slot].pid, slot, true
}

func (d *DInput) Destroy() {
	for i := range d.pads {
		pad := &d.pads[i]
		for e, eff := range pad.effects {
			if eff != nil {
				eff.Release()
				pad.effects[e] = nil
			}
		}
		if pad.dev != nil {
			pad.dev.Release()
		}
		d.pads[i] = legacyPad{}
	}
	d.count = 0
	if d.api != nil {
		d.api.Close()
		d.api = nil
	}
	d.active = false
}
