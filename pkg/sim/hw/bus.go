package hw

import "sync/atomic"

// Bus simulates the byte-transport peripheral.
type Bus struct {
	enabled atomic.Bool
}

// EnableReceiver implements hal.Bus.
func (b *Bus) EnableReceiver() {
	b.enabled.Store(true)
}

// Enabled tells if the receiver has been enabled.
func (b *Bus) Enabled() bool {
	return b.enabled.Load()
}
