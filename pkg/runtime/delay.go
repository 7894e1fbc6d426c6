package runtime

import "sync"

// SatelliteDelay is the one piece of process-wide state that crosses
// block boundaries (§5): the sender enqueues a packet with the current
// delay, the receiver reads it back on arrival. A single mutex around
// the current value is the whole synchronization surface; no other
// shared state exists between blocks.
type SatelliteDelay struct {
	mu    sync.Mutex
	value uint32 // milliseconds
}

// NewSatelliteDelay builds a delay model starting at initialMs.
func NewSatelliteDelay(initialMs uint32) *SatelliteDelay {
	return &SatelliteDelay{value: initialMs}
}

// Set updates the current delay, in milliseconds.
func (d *SatelliteDelay) Set(ms uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.value = ms
}

// Get returns the current delay, in milliseconds.
func (d *SatelliteDelay) Get() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value
}
