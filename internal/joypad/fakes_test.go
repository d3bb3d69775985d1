package joypad

import "fmt"

// notifierEvent records one autoconfigure notification.
type notifierEvent struct {
	connected bool
	name      string
	friendly  string
	ident     string
	port      uint
	vid, pid  uint16
}

type recordNotifier struct {
	events []notifierEvent
}

func (n *recordNotifier) Connect(name, friendly, ident string, port uint, vid, pid uint16) {
	n.events = append(n.events, notifierEvent{
		connected: true, name: name, friendly: friendly, ident: ident,
		port: port, vid: vid, pid: pid,
	})
}

func (n *recordNotifier) Disconnect(port uint, name string) {
	n.events = append(n.events, notifierEvent{port: port, name: name})
}

func (n *recordNotifier) connects() []notifierEvent {
	var out []notifierEvent
	for _, e := range n.events {
		if e.connected {
			out = append(out, e)
		}
	}
	return out
}

func (n *recordNotifier) disconnects() []notifierEvent {
	var out []notifierEvent
	for _, e := range n.events {
		if !e.connected {
			out = append(out, e)
		}
	}
	return out
}

type fakeEffect struct {
	strength uint16
	sets     int
	released bool
	fail     error
}

func (e *fakeEffect) SetStrength(strength uint16) error {
	if e.fail != nil {
		return e.fail
	}
	e.strength = strength
	e.sets++
	return nil
}

func (e *fakeEffect) Release() { e.released = true }

// fakeDevice scripts one legacy device. pollErrs are consumed one per
// Poll call; once drained Poll succeeds.
type fakeDevice struct {
	inst DeviceInstance

	coopCalls  int
	coopWindow uintptr
	coopFlags  CoopFlags

	axesEnumerated bool
	ffb            bool

	effectErr error
	effects   []*fakeEffect

	pollErrs   []error
	acquireErr error
	stateErr   error
	state      LegacyState

	released bool
}

func (d *fakeDevice) SetCooperativeLevel(window uintptr, flags CoopFlags) error {
	d.coopCalls++
	d.coopWindow = window
	d.coopFlags = flags
	return nil
}

func (d *fakeDevice) EnumAxes() (bool, error) {
	d.axesEnumerated = true
	return d.ffb, nil
}

func (d *fakeDevice) CreateEffect(RumbleEffect) (FFEffect, error) {
	if d.effectErr != nil {
		return nil, d.effectErr
	}
	e := &fakeEffect{}
	d.effects = append(d.effects, e)
	return e, nil
}

func (d *fakeDevice) Poll() error {
	if len(d.pollErrs) == 0 {
		return nil
	}
	err := d.pollErrs[0]
	d.pollErrs = d.pollErrs[1:]
	return err
}

func (d *fakeDevice) Acquire() error { return d.acquireErr }

func (d *fakeDevice) State(st *LegacyState) error {
	if d.stateErr != nil {
		return d.stateErr
	}
	*st = d.state
	return nil
}

func (d *fakeDevice) Release() { d.released = true }

type fakeContext struct {
	devices   []*fakeDevice
	enumErr   error
	refreshes int
	closed    bool
}

func (c *fakeContext) EnumDevices(cb func(inst DeviceInstance) bool) error {
	if c.enumErr != nil {
		return c.enumErr
	}
	for _, d := range c.devices {
		if !cb(d.inst) {
			break
		}
	}
	return nil
}

func (c *fakeContext) OpenDevice(inst DeviceInstance) (LegacyDevice, error) {
	for _, d := range c.devices {
		if d.inst.InstanceID == inst.InstanceID {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no device %d", inst.InstanceID)
}

func (c *fakeContext) Refresh() { c.refreshes++ }
func (c *fakeContext) Close()   { c.closed = true }

// fixedClassifier marks device instances as vendor-capable by ID.
type fixedClassifier map[uint32]bool

func (c fixedClassifier) IsVendorPad(inst *DeviceInstance) bool {
	return c[inst.InstanceID]
}

// newFakeDevice builds a device whose GUID packs the given product and
// vendor identifiers.
func newFakeDevice(id uint32, name string, vid, pid uint16) *fakeDevice {
	return &fakeDevice{
		inst: DeviceInstance{
			InstanceID:   id,
			ProductName:  name,
			InstanceName: name + " #" + fmt.Sprint(id),
			ProductGUID:  GUID{Data1: uint32(pid)<<16 | uint32(vid)},
		},
	}
}

// fakeVendorAPI scripts the vendor entry points.
type fakeVendorAPI struct {
	states    [vendorUserCount]XInputState
	connected [vendorUserCount]bool

	getCalls int
	setCalls []Vibration
	setUsers []uint32
	setRet   uint32
	closed   int
}

func (f *fakeVendorAPI) get(user uint32, st *XInputState) uint32 {
	f.getCalls++
	if int(user) >= vendorUserCount || !f.connected[user] {
		return errDeviceNotConnected
	}
	*st = f.states[user]
	return 0
}

func (f *fakeVendorAPI) set(user uint32, vib *Vibration) uint32 {
	f.setUsers = append(f.setUsers, user)
	f.setCalls = append(f.setCalls, *vib)
	return f.setRet
}

// entryPoints builds the resolved export set. withEx controls whether
// the extended (ordinal) read is present.
func (f *fakeVendorAPI) entryPoints(withEx bool) *EntryPoints {
	ep := &EntryPoints{
		GetState: f.get,
		SetState: f.set,
		Close:    func() { f.closed++ },
	}
	if withEx {
		ep.GetStateEx = f.get
	}
	return ep
}

type fakeResolver struct {
	ep       *EntryPoints
	err      error
	resolves int
}

func (r *fakeResolver) Resolve() (*EntryPoints, error) {
	r.resolves++
	if r.err != nil {
		return nil, r.err
	}
	return r.ep, nil
}
