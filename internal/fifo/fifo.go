// Package fifo implements a reusable byte accumulator. It backs both the
// GSE encoder's packing context (github.com/satcom-sim/encap/pkg/gse/encoder)
// and the GSE decoder's per-frag-id reassembly slots
// (github.com/satcom-sim/encap/pkg/gse/decoder), so that neither allocates a
// fresh buffer per packet in the steady state.
package fifo

import "github.com/satcom-sim/encap/internal/crc"

// Buffer is a growable byte accumulator that is cleared logically (not
// freed) between uses. Capacity set by NewBuffer is kept across Reset
// calls so that repeated use settles into zero allocations once the
// buffer has grown to its steady-state size.
type Buffer struct {
	data []byte
}

// NewBuffer creates a Buffer with the given initial capacity hint.
func NewBuffer(capacityHint int) *Buffer {
	return &Buffer{data: make([]byte, 0, capacityHint)}
}

// Reset clears the logical contents without releasing the backing array.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
}

// Write appends p to the buffer, optionally folding the written bytes into
// a running checksum, and returns the number of bytes appended (always
// len(p); Buffer grows as needed).
func (b *Buffer) Write(p []byte, running *crc.CRC32) int {
	if running != nil {
		running.Block(p)
	}
	b.data = append(b.data, p...)
	return len(p)
}

// Bytes returns the buffer's current contents. The returned slice aliases
// the buffer's storage and is only valid until the next Write or Reset.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len reports the number of bytes currently accumulated.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Cap reports the buffer's current backing capacity.
func (b *Buffer) Cap() int {
	return cap(b.data)
}
