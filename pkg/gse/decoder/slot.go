// Package decoder implements GseDecoder: reassembly of fragmented GSE
// PDUs keyed by frag_id, CRC validation, protocol dispatch and the
// ReUse label cache (§4.4).
package decoder

import (
	"github.com/satcom-sim/encap/internal/crc"
	"github.com/satcom-sim/encap/internal/fifo"
	"github.com/satcom-sim/encap/pkg/packet"
)

// slot is one frag_id's in-progress reassembly: the bytes received so
// far, the expected total length from the first fragment, and the
// running CRC fold.
type slot struct {
	fragID      packet.FragID
	buffer      *fifo.Buffer
	crc         crc.CRC32
	totalLength uint16
	label       packet.Label
	labelType   int
	started     bool
}

func newSlot(fragID packet.FragID) *slot {
	return &slot{fragID: fragID, buffer: fifo.NewBuffer(2048)}
}

func (s *slot) reset() {
	s.buffer.Reset()
	s.crc.Reset()
	s.totalLength = 0
	s.started = false
}

func (s *slot) complete() bool {
	return s.started && s.totalLength > 0 && uint16(s.buffer.Len()) >= s.totalLength
}
