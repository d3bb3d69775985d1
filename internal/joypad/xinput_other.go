//go:build !windows

package joypad

import "errors"

// NewVendorResolver returns a resolver that always fails: the vendor
// gamepad API does not exist off Windows, so the backend reports
// itself unavailable at Init.
func NewVendorResolver() VendorResolver {
	return unavailableResolver{}
}

type unavailableResolver struct{}

func (unavailableResolver) Resolve() (*EntryPoints, error) {
	return nil, errors.New("vendor gamepad API unavailable on this platform")
}
