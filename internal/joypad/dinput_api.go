package joypad

import (
	"errors"
	"strings"
)

// Errors surfaced by legacy device reads. The poll loop treats
// ErrInputLost and ErrNotAcquired as device loss; any other read error
// leaves the slot idle for the tick.
var (
	ErrInputLost   = errors.New("joypad: input lost")
	ErrNotAcquired = errors.New("joypad: device not acquired")
	ErrUnsupported = errors.New("joypad: unsupported")
)

// GUID mirrors the native product identifier layout. Data1 packs the
// product and vendor identifiers as quotient and modulo halves.
type GUID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

// DeviceInstance describes one enumerated legacy device.
type DeviceInstance struct {
	InstanceID   uint32
	ProductName  string
	InstanceName string
	ProductGUID  GUID
	// DevicePath is the driver-reported device path, consulted by the
	// portable vendor-capability classifier.
	DevicePath string
}

// CoopFlags control a legacy device's access mode.
type CoopFlags uint32

const (
	CoopExclusive CoopFlags = 1 << iota
	CoopBackground
)

// LegacyContext is the enumerable joystick API the legacy backend
// drives. Real implementations wrap a platform joystick library; tests
// substitute fakes.
type LegacyContext interface {
	// EnumDevices invokes cb once per attached device. Enumeration
	// stops early when cb returns false.
	EnumDevices(cb func(inst DeviceInstance) bool) error

	// OpenDevice creates the native handle for an enumerated device.
	OpenDevice(inst DeviceInstance) (LegacyDevice, error)

	// Refresh runs the context's per-frame housekeeping before device
	// state reads.
	Refresh()

	Close()
}

// LegacyDevice is one opened legacy joystick.
type LegacyDevice interface {
	SetCooperativeLevel(window uintptr, flags CoopFlags) error

	// EnumAxes enumerates the device's absolute axes, fixing their
	// ranges to the signed 16-bit scale, and reports whether the
	// device is force-feedback capable.
	EnumAxes() (forceFeedback bool, err error)

	CreateEffect(effect RumbleEffect) (FFEffect, error)

	Poll() error
	Acquire() error

	// State overwrites st with the device's current raw state.
	State(st *LegacyState) error

	Release()
}

// FFEffect is a pre-built rumble effect whose magnitude can be updated
// and re-submitted.
type FFEffect interface {
	SetStrength(strength uint16) error
	Release()
}

const (
	legacyAxisCount   = 8
	legacyHatCount    = 4
	legacyButtonCount = 128

	// povCentered is the raw POV reading for a centered hat.
	povCentered = 0xFFFF
)

// LegacyState is one raw device snapshot. It is overwritten wholesale
// every poll tick, never merged.
type LegacyState struct {
	// Axes holds X, Y, Z, RX, RY, RZ and two sliders.
	Axes    [legacyAxisCount]int32
	POV     [legacyHatCount]uint32
	Buttons [legacyButtonCount]byte
}

// VendorClassifier decides whether an enumerated device is serviced by
// the vendor gamepad API. The heuristic is best-effort and
// platform-version-dependent, so it is an injected policy.
type VendorClassifier interface {
	IsVendorPad(inst *DeviceInstance) bool
}

// Well known vendor-API product GUIDs, checked before any device-list
// scan. Data1 packs product and vendor halves; Data4 carries the HID
// class signature.
var knownVendorGUIDs = []GUID{
	{Data1: 0x11FF<<16 | 0x28DE, Data4: [8]byte{0x00, 0x00, 'P', 'I', 'D', 'V', 'I', 'D'}}, // Valve streaming pad
	{Data1: 0x02A1<<16 | 0x045E, Data4: [8]byte{0x00, 0x00, 'P', 'I', 'D', 'V', 'I', 'D'}}, // wired 360 pad
	{Data1: 0x028E<<16 | 0x045E, Data4: [8]byte{0x00, 0x00, 'P', 'I', 'D', 'V', 'I', 'D'}}, // wireless 360 pad
}

func isKnownVendorGUID(g GUID) bool {
	for _, k := range knownVendorGUIDs {
		if g == k {
			return true
		}
	}
	return false
}

// vendorPadMarker is the substring vendor-API devices embed in their
// driver-reported path.
const vendorPadMarker = "IG_"

// markerClassifier is the portable classifier: a known-GUID lookup
// with a fallback scan of the device path for the vendor marker.
type markerClassifier struct{}

func (markerClassifier) IsVendorPad(inst *DeviceInstance) bool {
	if isKnownVendorGUID(inst.ProductGUID) {
		return true
	}
	return strings.Contains(inst.DevicePath, vendorPadMarker)
}
