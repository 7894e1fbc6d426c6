// Package encoder implements GseEncoder: packing of fixed-length upper
// PDUs, single-shot encoding of variable-length PDUs, GSE-packet
// production with optional label reuse and in-band header extensions,
// and the ChunkingPort a scheduler uses to fit a packet into a
// remaining byte budget (§4.3, §4.8).
package encoder

import (
	"github.com/satcom-sim/encap/internal/fifo"
	"github.com/satcom-sim/encap/pkg/packet"
)

// PackingContext accumulates fixed-length upper PDUs bound for one
// (src_tal_id, dst_tal_id, qos) triple until it is full or flushed
// (§3). Its buffer is a recycled github.com/satcom-sim/encap/internal/fifo.Buffer so
// steady-state packing allocates nothing per packet, generalizing the
// original implementation's GseEncapCtx.
type PackingContext struct {
	Identifier packet.GseIdentifier
	Protocol   packet.Protocol
	SpotID     uint16

	buffer      *fifo.Buffer
	fixedLen    int
	capacity    int
	full        bool
	reset       bool
	packetCount int
}

// newPackingContext creates a context for identifier carrying PDUs of
// fixedLen bytes each, with capacity as the maximum payload bytes it may
// accumulate before the packing threshold logic must flush it.
func newPackingContext(id packet.GseIdentifier, protocol packet.Protocol, fixedLen, capacity int) *PackingContext {
	return &PackingContext{
		Identifier: id,
		Protocol:   protocol,
		fixedLen:   fixedLen,
		capacity:   capacity,
		buffer:     fifo.NewBuffer(capacity),
		reset:      true,
	}
}

// hasRoomForAnother reports whether one more fixed-length PDU would
// still fit in the context's capacity.
func (c *PackingContext) hasRoomForAnother() bool {
	return c.buffer.Len()+c.fixedLen <= c.capacity
}

// add appends data to the context buffer. If this was the first add
// since the last drain, reset is cleared. Invariant from §3: if full
// then reset is false; while reset, add restarts the buffer.
func (c *PackingContext) add(data []byte) {
	if c.reset {
		c.buffer.Reset()
		c.reset = false
		c.packetCount = 0
	}
	c.buffer.Write(data, nil)
	c.packetCount++
	c.full = !c.hasRoomForAnother()
}

// drain returns the accumulated bytes and marks the context reset for
// reuse, recycling its backing buffer rather than allocating a new one.
func (c *PackingContext) drain() []byte {
	out := make([]byte, c.buffer.Len())
	copy(out, c.buffer.Bytes())
	c.buffer.Reset()
	c.reset = true
	c.full = false
	c.packetCount = 0
	return out
}

// Full reports whether the context cannot accept another fixed-length
// PDU without being drained first.
func (c *PackingContext) Full() bool { return c.full }

// Empty reports whether the context currently holds no accumulated
// bytes.
func (c *PackingContext) Empty() bool { return c.buffer.Len() == 0 }
