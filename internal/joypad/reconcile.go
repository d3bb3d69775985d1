package joypad

// Owner names the backend servicing a logical port.
type Owner uint8

const (
	OwnedByLegacy Owner = iota
	OwnedByVendor
	OwnedByFramework
)

// Reconciler maps logical ports to backend-native indices when two
// backends can see the same physical device. The legacy backend fills
// the redirection table during enumeration; once a legacy slot is
// redirected, every frame query for that port routes to the vendor
// backend exclusively. The table is rebuilt wholesale on backend
// reinitialization, never patched incrementally.
type Reconciler struct {
	vendorUser [MaxUsers]int
	blockPads  bool
}

func NewReconciler() *Reconciler {
	r := &Reconciler{}
	r.Reset()
	return r
}

// Reset marks every port unmapped.
func (r *Reconciler) Reset() {
	for i := range r.vendorUser {
		r.vendorUser[i] = -1
	}
}

// Assign redirects the given legacy slot to a vendor user index.
func (r *Reconciler) Assign(slot int, user int) {
	if slot < 0 || slot >= MaxUsers || user < 0 || user >= vendorUserCount {
		return
	}
	r.vendorUser[slot] = user
}

// VendorUser returns the vendor user index servicing the port, or -1
// when the port is unmapped and belongs to the legacy backend.
func (r *Reconciler) VendorUser(port uint) int {
	if port >= MaxUsers {
		return -1
	}
	return r.vendorUser[port]
}

// Resolve reports which backend owns the port along with the
// backend-native index. The framework backend manages its own slots,
// so ports it owns map through unchanged.
func (r *Reconciler) Resolve(port uint, framework bool) (Owner, int) {
	if framework {
		return OwnedByFramework, int(port)
	}
	if u := r.VendorUser(port); u >= 0 {
		return OwnedByVendor, u
	}
	return OwnedByLegacy, int(port)
}

// LegacySlotFor finds the legacy slot redirected to the given vendor
// user, for recovering device identity from the enumerating side.
func (r *Reconciler) LegacySlotFor(user int) (int, bool) {
	for i := range r.vendorUser {
		if r.vendorUser[i] == user {
			return i, true
		}
	}
	return 0, false
}

// BlockPads reports whether vendor-pad exclusivity mode is active:
// devices the classifier marks vendor-capable are then skipped by the
// legacy backend.
func (r *Reconciler) BlockPads() bool { return r.blockPads }

// SetBlockPads toggles vendor-pad exclusivity mode.
func (r *Reconciler) SetBlockPads(v bool) { r.blockPads = v }
