// Package joypad unifies heterogeneous controller APIs behind one
// driver-agnostic polling interface. Three backends are provided: a
// legacy enumerated joystick backend ("dinput"), a vendor gamepad
// backend with four fixed user slots ("xinput") and a mobile
// controller-framework backend ("apple_ios"). The same physical pad
// can be visible through both the legacy and the vendor API at once;
// the redirection table built during legacy enumeration decides, per
// logical port, which backend is authoritative.
package joypad

import "runtime"

const (
	// MaxUsers is the number of logical controller ports.
	MaxUsers = 16

	// MaxBinds is the number of bind slots evaluated by the aggregate
	// state query.
	MaxBinds = 16

	vendorUserCount = 4
)

// Key identifies a button on a pad. Values below the backend's button
// count address plain buttons; values with the hat flag set address a
// POV hat direction.
type Key uint16

// NoKey is the unbound key sentinel.
const NoKey Key = 0xFFFF

const hatFlag Key = 0x8000

// HatDir is one of the four POV hat directions.
type HatDir uint8

const (
	HatUp HatDir = iota
	HatDown
	HatLeft
	HatRight
)

// HatKey builds a Key addressing one direction of a POV hat.
func HatKey(hat int, dir HatDir) Key {
	return hatFlag | Key(hat)<<2 | Key(dir)
}

// Hat splits a hat key into its hat index and direction. ok is false
// for plain button keys.
func (k Key) Hat() (hat int, dir HatDir, ok bool) {
	if k == NoKey || k&hatFlag == 0 {
		return 0, 0, false
	}
	return int(k&^hatFlag) >> 2, HatDir(k & 0x3), true
}

// AxisSelector addresses one signed half of an axis. The negative half
// carries the axis index in the high halfword, the positive half in
// the low halfword; the unused halfword is saturated so that an
// out-of-range check on the wrong half always fails.
type AxisSelector uint32

// AxisNone is the unbound axis sentinel.
const AxisNone AxisSelector = 0xFFFFFFFF

// NegAxis selects the negative half of axis i.
func NegAxis(i uint) AxisSelector { return AxisSelector(i)<<16 | 0xFFFF }

// PosAxis selects the positive half of axis i.
func PosAxis(i uint) AxisSelector { return 0xFFFF0000 | AxisSelector(i&0xFFFF) }

// NegGet returns the axis index when the selector addresses a negative
// half; otherwise it returns a value past any valid axis count.
func (a AxisSelector) NegGet() uint { return uint(a>>16) & 0xFFFF }

// PosGet returns the axis index when the selector addresses a positive
// half; otherwise it returns a value past any valid axis count.
func (a AxisSelector) PosGet() uint { return uint(a) & 0xFFFF }

// Bind pairs an optional key binding with an optional axis binding for
// one bind slot.
type Bind struct {
	Key  Key
	Axis AxisSelector
}

// Info carries the per-port query context for aggregate state reads.
// AutoBinds are per joypad, not per user: they fill in for bind slots
// the explicit binds leave unbound.
type Info struct {
	JoyIdx        uint
	AutoBinds     [MaxBinds]Bind
	AxisThreshold float32
}

// RumbleEffect selects a force-feedback motor class.
type RumbleEffect uint8

const (
	// RumbleStrong drives the low-frequency (left) motor.
	RumbleStrong RumbleEffect = iota
	// RumbleWeak drives the high-frequency (right) motor.
	RumbleWeak

	rumbleEffectCount
)

// Driver is the uniform backend contract. All query methods have a
// defined empty answer for not-ready, not-connected and out-of-range
// ports; no backend failure crosses this boundary.
type Driver interface {
	// Init prepares the backend. A non-nil error marks the backend
	// unavailable for the session; no other method may be called.
	Init() error

	// QueryPad reports whether a pad is serviced on the given port.
	QueryPad(port uint) bool

	// Destroy releases all backend resources.
	Destroy()

	// Button reports whether the given key is held on the port.
	Button(port uint, key Key) bool

	// Axis returns the signed magnitude of one axis half.
	Axis(port uint, axis AxisSelector) int16

	// Poll refreshes the backend's cached state. Must be called once
	// per frame before any query.
	Poll()

	// Rumble drives one rumble motor. It reports false when the port
	// or effect kind is unsupported, leaving all state unchanged.
	Rumble(port uint, effect RumbleEffect, strength uint16) bool

	// Name returns the device name for the port, or "" when none is
	// available.
	Name(port uint) string

	// Ident is the static backend identifier.
	Ident() string
}

// StateReader is the optional aggregate meta-query: one bitmask with
// bit i set when bind slot i passes its button check or its
// axis-threshold check. Backends that cannot serve it simply do not
// implement the interface.
type StateReader interface {
	State(info *Info, binds *[MaxBinds]Bind, port uint) uint16
}

// Config is the shared construction context for backend drivers,
// replacing the process-wide tables the platform APIs suggest.
type Config struct {
	Notifier     Notifier
	WindowHandle func() uintptr
}

// Select picks the joypad driver for this platform. Selection happens
// once at startup: on Windows the vendor backend is composed over the
// legacy backend so both classes of pad work together; elsewhere the
// legacy backend alone services every port. ctx provides the legacy
// enumeration API (nil selects the SDL joystick adapter).
func Select(cfg Config, ctx LegacyContext) Driver {
	if cfg.Notifier == nil {
		cfg.Notifier = NopNotifier{}
	}
	rec := NewReconciler()
	legacy := NewDInput(DInputConfig{
		API:          ctx,
		Notifier:     cfg.Notifier,
		WindowHandle: cfg.WindowHandle,
		Reconciler:   rec,
	})
	if runtime.GOOS == "windows" {
		return NewXInput(XInputConfig{
			Resolver:   NewVendorResolver(),
			Notifier:   cfg.Notifier,
			Reconciler: rec,
			Legacy:     legacy,
		})
	}
	return legacy
}
