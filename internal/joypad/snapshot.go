package joypad

// snapshotAxisCount covers both sticks and the two triggers.
const snapshotAxisCount = 6

// PortSnapshot is one port's decoded state for a frame, the unit the
// viewer streams out. Comparable, so change detection is plain
// equality.
type PortSnapshot struct {
	Port      int                      `json:"port"`
	Connected bool                     `json:"connected"`
	Name      string                   `json:"name,omitempty"`
	Driver    string                   `json:"driver"`
	Buttons   uint16                   `json:"buttons"`
	Axes      [snapshotAxisCount]int16 `json:"axes"`
}

// Capture reads one port through the façade after the frame's Poll.
// The aggregate meta-query serves the button bitmask where the backend
// provides it; otherwise the per-bind button loop stands in.
func Capture(d Driver, info *Info, binds *[MaxBinds]Bind, port uint) PortSnapshot {
	snap := PortSnapshot{Port: int(port), Driver: d.Ident()}
	if !d.QueryPad(port) {
		return snap
	}
	snap.Connected = true
	snap.Name = d.Name(port)

	info.JoyIdx = port
	if sr, ok := d.(StateReader); ok {
		snap.Buttons = sr.State(info, binds, port)
	} else {
		for i := 0; i < MaxBinds; i++ {
			key := binds[i].Key
			if key == NoKey {
				key = info.AutoBinds[i].Key
			}
			if key != NoKey && d.Button(port, key) {
				snap.Buttons |= 1 << i
			}
		}
	}

	for i := uint(0); i < snapshotAxisCount; i++ {
		// The halves are antisymmetric, at most one is nonzero.
		snap.Axes[i] = d.Axis(port, NegAxis(i)) + d.Axis(port, PosAxis(i))
	}
	return snap
}

// UnboundBinds returns a bind set with every slot unbound, deferring
// everything to the auto binds.
func UnboundBinds() [MaxBinds]Bind {
	var binds [MaxBinds]Bind
	for i := range binds {
		binds[i] = Bind{Key: NoKey, Axis: AxisNone}
	}
	return binds
}

// DefaultAutoBinds is a generic auto-detected layout: face buttons on
// the first button indices, directions on hat 0, shoulder buttons
// after, and the stick halves on the last bind slots.
func DefaultAutoBinds() [MaxBinds]Bind {
	binds := UnboundBinds()
	binds[0].Key = 0
	binds[1].Key = 1
	binds[2].Key = 2
	binds[3].Key = 3
	binds[4].Key = HatKey(0, HatUp)
	binds[5].Key = HatKey(0, HatDown)
	binds[6].Key = HatKey(0, HatLeft)
	binds[7].Key = HatKey(0, HatRight)
	binds[8].Key = 4
	binds[9].Key = 5
	binds[10].Key = 6
	binds[11].Key = 7
	binds[12].Axis = NegAxis(0)
	binds[13].Axis = PosAxis(0)
	binds[14].Axis = NegAxis(1)
	binds[15].Axis = PosAxis(1)
	return binds
}
