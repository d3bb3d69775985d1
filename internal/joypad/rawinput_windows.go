//go:build windows

package joypad

import (
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

// newVendorClassifier returns the raw-device-list classifier. The
// known-GUID table still short-circuits the scan for popular devices.
func newVendorClassifier() VendorClassifier {
	return rawDeviceClassifier{}
}

var (
	user32                    = windows.NewLazySystemDLL("user32.dll")
	procGetRawInputDeviceList = user32.NewProc("GetRawInputDeviceList")
	procGetRawInputDeviceInfo = user32.NewProc("GetRawInputDeviceInfoW")
)

const (
	rimTypeHID = 2

	ridiDeviceName = 0x20000007
	ridiDeviceInfo = 0x2000000B
)

type rawInputDeviceList struct {
	device uintptr
	typ    uint32
}

type ridDeviceInfo struct {
	size uint32
	typ  uint32
	// union of the mouse, keyboard and HID blocks; the HID block
	// starts with the vendor and product identifiers.
	data [24]byte
}

func (i *ridDeviceInfo) hidVendor() uint32 {
	return *(*uint32)(unsafe.Pointer(&i.data[0]))
}

func (i *ridDeviceInfo) hidProduct() uint32 {
	return *(*uint32)(unsafe.Pointer(&i.data[4]))
}

// rawDeviceClassifier walks the system raw-device list looking for a
// HID device matching the product identifier whose driver-reported
// name embeds the vendor marker. Best-effort: any API failure
// classifies the device as legacy.
type rawDeviceClassifier struct{}

func (rawDeviceClassifier) IsVendorPad(inst *DeviceInstance) bool {
	if isKnownVendorGUID(inst.ProductGUID) {
		return true
	}

	var count uint32
	entrySize := uint32(unsafe.Sizeof(rawInputDeviceList{}))
	// Both raw-input calls return a 32-bit UINT; failure is (UINT)-1 in
	// the low 32 bits of the syscall return.
	ret, _, _ := procGetRawInputDeviceList.Call(
		0, uintptr(unsafe.Pointer(&count)), uintptr(entrySize))
	if uint32(ret) == ^uint32(0) || count == 0 {
		return false
	}

	devices := make([]rawInputDeviceList, count)
	ret, _, _ = procGetRawInputDeviceList.Call(
		uintptr(unsafe.Pointer(&devices[0])),
		uintptr(unsafe.Pointer(&count)), uintptr(entrySize))
	if uint32(ret) == ^uint32(0) {
		return false
	}

	for i := range devices {
		if devices[i].typ != rimTypeHID {
			continue
		}

		var info ridDeviceInfo
		info.size = uint32(unsafe.Sizeof(info))
		infoSize := info.size
		ret, _, _ = procGetRawInputDeviceInfo.Call(devices[i].device,
			ridiDeviceInfo, uintptr(unsafe.Pointer(&info)),
			uintptr(unsafe.Pointer(&infoSize)))
		if uint32(ret) == ^uint32(0) {
			continue
		}
		packed := (info.hidProduct()&0xFFFF)<<16 | info.hidVendor()&0xFFFF
		if packed != inst.ProductGUID.Data1 {
			continue
		}

		var nameLen uint32
		ret, _, _ = procGetRawInputDeviceInfo.Call(devices[i].device,
			ridiDeviceName, 0, uintptr(unsafe.Pointer(&nameLen)))
		if uint32(ret) == ^uint32(0) || nameLen == 0 {
			continue
		}
		buf := make([]uint16, nameLen)
		ret, _, _ = procGetRawInputDeviceInfo.Call(devices[i].device,
			ridiDeviceName, uintptr(unsafe.Pointer(&buf[0])),
			uintptr(unsafe.Pointer(&nameLen)))
		if uint32(ret) == ^uint32(0) {
			continue
		}

		if strings.Contains(windows.UTF16ToString(buf), vendorPadMarker) {
			return true
		}
	}
	return false
}
