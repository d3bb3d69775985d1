//go:build windows

package joypad

import (
	"fmt"
	"log"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// vendorModuleNames is the DLL fallback chain, newest first. The last
// entry is the reduced stub shipped with the base system; it carries
// no ordinal exports.
var vendorModuleNames = []string{
	"xinput1_4.dll",
	"xinput1_3.dll",
	"xinput9_1_0.dll",
}

// getStateExOrdinal is the undocumented extended state read, exported
// by ordinal only. It adds the guide button to the reachable set.
const getStateExOrdinal = 100

// NewVendorResolver resolves the vendor gamepad entry points from the
// system module search chain.
func NewVendorResolver() VendorResolver {
	return &dllResolver{}
}

type dllResolver struct{}

func (r *dllResolver) Resolve() (*EntryPoints, error) {
	var lastErr error
	for _, name := range vendorModuleNames {
		handle, err := windows.LoadLibraryEx(name, 0,
			windows.LOAD_LIBRARY_SEARCH_SYSTEM32)
		if err != nil {
			lastErr = err
			continue
		}
		log.Printf("[XInput] loaded %s", name)
		return entryPointsFrom(handle), nil
	}
	return nil, fmt.Errorf("no vendor gamepad module found: %w", lastErr)
}

func entryPointsFrom(handle windows.Handle) *EntryPoints {
	ep := &EntryPoints{
		Close: func() { windows.FreeLibrary(handle) },
	}

	if addr, err := windows.GetProcAddressByOrdinal(handle, getStateExOrdinal); err == nil {
		ep.GetStateEx = stateReadAt(addr)
	}
	if addr, err := windows.GetProcAddress(handle, "XInputGetState"); err == nil {
		ep.GetState = stateReadAt(addr)
	}
	if addr, err := windows.GetProcAddress(handle, "XInputSetState"); err == nil {
		ep.SetState = func(user uint32, vib *Vibration) uint32 {
			ret, _, _ := syscall.SyscallN(addr,
				uintptr(user), uintptr(unsafe.Pointer(vib)))
			return uint32(ret)
		}
	}
	return ep
}

func stateReadAt(addr uintptr) GetStateFunc {
	return func(user uint32, st *XInputState) uint32 {
		ret, _, _ := syscall.SyscallN(addr,
			uintptr(user), uintptr(unsafe.Pointer(st)))
		return uint32(ret)
	}
}
