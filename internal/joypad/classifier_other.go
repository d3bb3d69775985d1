//go:build !windows

package joypad

// newVendorClassifier returns the portable classifier: a known-GUID
// lookup plus the device-path marker check. The raw-device-list scan
// needs platform support.
func newVendorClassifier() VendorClassifier {
	return markerClassifier{}
}
