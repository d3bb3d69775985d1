package joypad

import (
	"fmt"

	"github.com/jupiterrider/purego-sdl3/sdl"
)

// newPlatformLegacyContext builds the default legacy enumeration
// context for this platform.
func newPlatformLegacyContext() (LegacyContext, error) {
	return NewSDLContext()
}

// sdlContext adapts the SDL3 joystick subsystem to the legacy
// enumeration API. Must be used from one OS thread.
type sdlContext struct {
	opened map[uint32]*sdl.Joystick
}

// NewSDLContext initializes the SDL3 joystick subsystem.
func NewSDLContext() (LegacyContext, error) {
	if !sdl.Init(sdl.InitJoystick) {
		return nil, fmt.Errorf("sdl init: %s", sdl.GetError())
	}
	return &sdlContext{opened: make(map[uint32]*sdl.Joystick)}, nil
}

func (c *sdlContext) EnumDevices(cb func(inst DeviceInstance) bool) error {
	for _, id := range sdl.GetJoysticks() {
		js := sdl.OpenJoystick(id)
		if js == nil {
			continue
		}
		instanceID := uint32(sdl.GetJoystickID(js))
		c.opened[instanceID] = js

		vid := uint32(sdl.GetJoystickVendor(js))
		pid := uint32(sdl.GetJoystickProduct(js))
		name := sdl.GetJoystickName(js)

		inst := DeviceInstance{
			InstanceID:   instanceID,
			ProductName:  name,
			InstanceName: name,
			// Data1 packs product and vendor halves the way the
			// record's identifier split expects.
			ProductGUID: GUID{Data1: pid<<16 | vid},
		}
		if !cb(inst) {
			return nil
		}
	}
	return nil
}

func (c *sdlContext) OpenDevice(inst DeviceInstance) (LegacyDevice, error) {
	js, ok := c.opened[inst.InstanceID]
	if !ok {
		return nil, fmt.Errorf("unknown joystick instance %d", inst.InstanceID)
	}
	return &sdlDevice{ctx: c, id: inst.InstanceID, js: js}, nil
}

// Refresh drains the SDL event queue so joystick state is current for
// the frame's reads.
func (c *sdlContext) Refresh() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
	}
}

func (c *sdlContext) Close() {
	for id, js := range c.opened {
		sdl.CloseJoystick(js)
		delete(c.opened, id)
	}
	sdl.Quit()
}

type sdlDevice struct {
	ctx *sdlContext
	id  uint32
	js  *sdl.Joystick
}

// SetCooperativeLevel is satisfied trivially: SDL owns device access
// modes itself.
func (d *sdlDevice) SetCooperativeLevel(uintptr, CoopFlags) error { return nil }

// EnumAxes reports no force feedback: rumble is not routed through
// this adapter.
func (d *sdlDevice) EnumAxes() (bool, error) { return false, nil }

func (d *sdlDevice) CreateEffect(RumbleEffect) (FFEffect, error) {
	return nil, ErrUnsupported
}

func (d *sdlDevice) Poll() error {
	if !sdl.JoystickConnected(d.js) {
		return ErrInputLost
	}
	return nil
}

func (d *sdlDevice) Acquire() error { return nil }

func (d *sdlDevice) State(st *LegacyState) error {
	if !sdl.JoystickConnected(d.js) {
		return ErrInputLost
	}

	numAxes := sdl.GetNumJoystickAxes(d.js)
	if numAxes > legacyAxisCount {
		numAxes = legacyAxisCount
	}
	for i := int32(0); i < numAxes; i++ {
		st.Axes[i] = int32(sdl.GetJoystickAxis(d.js, i))
	}

	numButtons := sdl.GetNumJoystickButtons(d.js)
	if numButtons > legacyButtonCount {
		numButtons = legacyButtonCount
	}
	for i := int32(0); i < numButtons; i++ {
		if sdl.GetJoystickButton(d.js, i) {
			st.Buttons[i] = 0x80
		}
	}

	numHats := sdl.GetNumJoystickHats(d.js)
	if numHats > legacyHatCount {
		numHats = legacyHatCount
	}
	for i := int32(0); i < numHats; i++ {
		st.POV[i] = hatToPOV(sdl.GetJoystickHat(d.js, i))
	}
	return nil
}

const (
	sdlHatUp    uint8 = 0x01
	sdlHatRight uint8 = 0x02
	sdlHatDown  uint8 = 0x04
	sdlHatLeft  uint8 = 0x08
)

// hatToPOV converts SDL hat direction flags to a POV angle in
// hundredths of degrees clockwise from up.
func hatToPOV(hat uint8) uint32 {
	switch hat & (sdlHatUp | sdlHatRight | sdlHatDown | sdlHatLeft) {
	case sdlHatUp:
		return 0
	case sdlHatUp | sdlHatRight:
		return 4500
	case sdlHatRight:
		return 9000
	case sdlHatRight | sdlHatDown:
		return 13500
	case sdlHatDown:
		return 18000
	case sdlHatDown | sdlHatLeft:
		return 22500
	case sdlHatLeft:
		return 27000
	case sdlHatLeft | sdlHatUp:
		return 31500
	}
	return povCentered
}

func (d *sdlDevice) Release() {
	sdl.CloseJoystick(d.js)
	delete(d.ctx.opened, d.id)
}
