//go:build !windows

// Package console provides Windows console glue; on other platforms
// these are stubs, the standard signal handling suffices.
package console

// IsRunningFromConsole always reports true off Windows.
func IsRunningFromConsole() bool {
	return true
}

// SetupConsoleHandler is a no-op off Windows.
func SetupConsoleHandler(shutdownChan chan struct{}) func() {
	return func() {}
}
