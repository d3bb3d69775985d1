package joypad

import "log"

// Notifier receives connect/disconnect events for the external
// autoconfiguration system. The matching logic behind it is not this
// package's concern.
type Notifier interface {
	Connect(name, friendlyName, driverIdent string, port uint, vid, pid uint16)
	Disconnect(port uint, name string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Connect(string, string, string, uint, uint16, uint16) {}
func (NopNotifier) Disconnect(uint, string)                              {}

// LogNotifier logs notifications, for frontends without an
// autoconfiguration system of their own.
type LogNotifier struct{}

func (LogNotifier) Connect(name, friendly, ident string, port uint, vid, pid uint16) {
	log.Printf("[Autoconf] port %d: connected %q (%s, %04X:%04X)", port, name, ident, vid, pid)
}

func (LogNotifier) Disconnect(port uint, name string) {
	log.Printf("[Autoconf] port %d: disconnected %q", port, name)
}
