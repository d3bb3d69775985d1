package joypad

import (
	"context"
	"log"
	"runtime"
	"time"
)

// Monitor owns the frame loop around a driver: poll once per tick,
// capture every port, emit snapshots that changed. All driver calls
// run on the monitor's goroutine, which keeps its OS thread, so the
// single-threaded polling contract holds.
type Monitor struct {
	driver  Driver
	tick    time.Duration
	info    Info
	binds   [MaxBinds]Bind
	changes chan PortSnapshot
	last    [MaxUsers]PortSnapshot
}

func NewMonitor(d Driver, tick time.Duration, axisThreshold float32) *Monitor {
	return &Monitor{
		driver: d,
		tick:   tick,
		info: Info{
			AutoBinds:     DefaultAutoBinds(),
			AxisThreshold: axisThreshold,
		},
		binds:   UnboundBinds(),
		changes: make(chan PortSnapshot, 64),
	}
}

// Changes returns the channel snapshots are sent on when a port's
// state changes.
func (m *Monitor) Changes() <-chan PortSnapshot { return m.changes }

// Run initializes the driver and polls it until ctx is done. Must be
// called from a dedicated goroutine.
func (m *Monitor) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := m.driver.Init(); err != nil {
		return err
	}
	defer m.driver.Destroy()

	log.Printf("[Monitor] driver %q ready", m.driver.Ident())

	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.frame()
		}
	}
}

func (m *Monitor) frame() {
	m.driver.Poll()
	for port := uint(0); port < MaxUsers; port++ {
		snap := Capture(m.driver, &m.info, &m.binds, port)
		if snap == m.last[port] {
			continue
		}
		m.last[port] = snap
		select {
		case m.changes <- snap:
		default:
			// Drop rather than stall the poll loop.
		}
	}
}
