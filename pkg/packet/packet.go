package packet

import (
	"github.com/satcom-sim/encap/pkg/encapfault"
)

// Packet is an immutable view of a contiguous byte payload plus the
// attributes the encapsulation core attaches to it (§3). Packets are
// created by Build and owned exclusively by the Burst that contains them;
// they are moved, never aliased, across the encoder/decoder boundary.
type Packet struct {
	data          []byte
	protocol      Protocol
	qos           uint8
	srcTalID      uint8
	dstTalID      uint8
	spotID        uint16
	headerLength  int
	trailerLength int
	extensions    map[uint16][]byte
}

// Build constructs a Packet, tagging its protocol and header length.
// Fails with encapfault.ErrInvalidLength if length is below the
// protocol's minimum header length (§4.1).
func Build(data []byte, length int, protocol Protocol, qos, srcTalID, dstTalID uint8) (*Packet, error) {
	if length < MinHeaderLength(protocol) {
		return nil, encapfault.ErrInvalidLength
	}
	return &Packet{
		data:     data[:length],
		protocol: protocol,
		qos:      qos & 0x07,
		srcTalID: srcTalID & 0x1F,
		dstTalID: dstTalID & 0x1F,
	}, nil
}

// BuildWithHeader is Build for a packet whose on-wire form already carries
// a known header/trailer split (used when rewrapping GSE-produced
// fragments back into the packet model, §4.3).
func BuildWithHeader(data []byte, protocol Protocol, qos, srcTalID, dstTalID uint8, headerLength, trailerLength int) *Packet {
	return &Packet{
		data:          data,
		protocol:      protocol,
		qos:           qos & 0x07,
		srcTalID:      srcTalID & 0x1F,
		dstTalID:      dstTalID & 0x1F,
		headerLength:  headerLength,
		trailerLength: trailerLength,
	}
}

func (p *Packet) Data() []byte          { return p.data }
func (p *Packet) Len() int              { return len(p.data) }
func (p *Packet) Protocol() Protocol    { return p.protocol }
func (p *Packet) QoS() uint8            { return p.qos }
func (p *Packet) SrcTalID() uint8       { return p.srcTalID }
func (p *Packet) DstTalID() uint8       { return p.dstTalID }
func (p *Packet) SpotID() uint16        { return p.spotID }
func (p *Packet) SetSpotID(spot uint16) { p.spotID = spot }
func (p *Packet) HeaderLength() int     { return p.headerLength }
func (p *Packet) TrailerLength() int    { return p.trailerLength }

// Payload returns the packet's payload, i.e. its data with the header and
// trailer stripped.
func (p *Packet) Payload() []byte {
	return p.data[p.headerLength : len(p.data)-p.trailerLength]
}

// Identifier returns the GseIdentifier triple this packet belongs to.
func (p *Packet) Identifier() GseIdentifier {
	return GseIdentifier{SrcTalID: p.srcTalID, DstTalID: p.dstTalID, QoS: p.qos}
}

// FragID returns the fragment id derived from this packet's source
// terminal id and QoS (§3).
func (p *Packet) FragID() FragID {
	return NewFragID(p.srcTalID, p.qos)
}

// IsBroadcast reports whether the packet's destination is the broadcast
// sentinel.
func (p *Packet) IsBroadcast() bool {
	return p.dstTalID == BroadcastTalID
}

// AddHeaderExtension adds a header extension identified by id. Returns
// false (duplicate, no error) if id is already present — §4.1 models this
// as an ok/duplicate result, not a hard failure.
func (p *Packet) AddHeaderExtension(id uint16, data []byte) bool {
	if p.extensions == nil {
		p.extensions = make(map[uint16][]byte)
	}
	if _, exists := p.extensions[id]; exists {
		return false
	}
	p.extensions[id] = data
	return true
}

// GetHeaderExtension returns the bytes stored under id, if any.
func (p *Packet) GetHeaderExtension(id uint16) ([]byte, bool) {
	data, ok := p.extensions[id]
	return data, ok
}

// HasExtensions reports whether any header extension has been attached.
func (p *Packet) HasExtensions() bool {
	return len(p.extensions) > 0
}
