//go:build windows

// Package console provides Windows console glue: reliable Ctrl+C
// handling that keeps working when a native library holds the main OS
// thread, and detection of GUI-mode launches.
package console

import (
	"log"
	"sync/atomic"

	"golang.org/x/sys/windows"
)

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procSetConsoleCtrlHandler = kernel32.NewProc("SetConsoleCtrlHandler")
	procGetConsoleWindow      = kernel32.NewProc("GetConsoleWindow")
)

const (
	ctrlCEvent     = 0
	ctrlBreakEvent = 1
)

var handlerClosed atomic.Bool

// IsRunningFromConsole reports whether the process has an attached
// console window; false means a GUI-mode launch.
func IsRunningFromConsole() bool {
	hwnd, _, _ := procGetConsoleWindow.Call()
	return hwnd != 0
}

// SetupConsoleHandler registers a console control handler that closes
// shutdownChan on Ctrl+C or Ctrl+Break. It returns a function that
// re-registers the handler, needed after native library init replaces
// it.
func SetupConsoleHandler(shutdownChan chan struct{}) func() {
	callback := windows.NewCallback(func(ctrlType uint32) uintptr {
		if ctrlType == ctrlCEvent || ctrlType == ctrlBreakEvent {
			if handlerClosed.CompareAndSwap(false, true) {
				close(shutdownChan)
			}
			return 1
		}
		return 0
	})

	register := func() {
		ret, _, _ := procSetConsoleCtrlHandler.Call(callback, 1)
		if ret == 0 {
			log.Printf("Warning: failed to set console control handler")
		}
	}
	register()
	return register
}
