package encoder

import (
	"github.com/satcom-sim/encap/internal/crc"
	"github.com/satcom-sim/encap/pkg/encapfault"
	"github.com/satcom-sim/encap/pkg/gse"
	"github.com/satcom-sim/encap/pkg/packet"
)

// ChunkResult is the outcome of Chunk (§4.8): either the whole packet
// fit (Remaining nil), it was refragmented (both fields set), or it
// could not be split to fit (Data nil, Remaining the original packet).
type ChunkResult struct {
	Data      *packet.Packet
	Remaining *packet.Packet
}

// Chunk implements ChunkingPort: given a GSE packet already produced by
// this encoder and a remaining byte budget in the next physical frame,
// decide what can be sent now. It is a pure function of its arguments.
func (e *Encoder) Chunk(p *packet.Packet, remainingLength int) (ChunkResult, error) {
	if p.Len() <= remainingLength {
		return ChunkResult{Data: p}, nil
	}

	frame, _, err := gse.Decode(p.Data())
	if err != nil {
		return ChunkResult{}, encapfault.ErrChunkingError
	}
	if frame == nil {
		return ChunkResult{}, encapfault.ErrChunkingError
	}
	if frame.Header.Variant() != gse.VariantComplete {
		// Already a fragment; this encoder never re-splits a fragment
		// further, matching the original implementation's single
		// refragmentation pass.
		return ChunkResult{Remaining: p}, nil
	}

	labelLen := gse.ToPacketLabelType(frame.LabelType).Len()
	firstOverhead := gse.HeaderLen + 1 + 2 + labelLen
	subOverhead := gse.HeaderLen + 1 + labelLen

	firstCap := remainingLength - firstOverhead
	if firstCap <= 0 {
		return ChunkResult{Remaining: p}, nil
	}

	// The complete packet's protocol_type becomes the first two bytes
	// of the PDU stream once it is refragmented, matching
	// produceGSEPackets' fragmented-path framing, with the same
	// trailing CRC-32.
	pdu := make([]byte, 2+len(frame.Payload)+4)
	pdu[0] = byte(frame.ProtocolType >> 8)
	pdu[1] = byte(frame.ProtocolType)
	copy(pdu[2:], frame.Payload)
	sum := crc.Sum32(pdu[:2+len(frame.Payload)])
	pdu[2+len(frame.Payload)] = byte(sum >> 24)
	pdu[2+len(frame.Payload)+1] = byte(sum >> 16)
	pdu[2+len(frame.Payload)+2] = byte(sum >> 8)
	pdu[2+len(frame.Payload)+3] = byte(sum)

	payload := pdu
	totalLength := uint16(len(payload))
	fragID := packet.NewFragID(frame.Label.SrcTalID, frame.Label.QoS)

	headLen := firstCap
	if headLen > len(payload) {
		headLen = len(payload)
	}
	headBuf := gse.EncodeFirstFragment(fragID, totalLength, frame.LabelType, frame.Label, payload[:headLen])
	head := packet.BuildWithHeader(headBuf, packet.ProtocolGSE, frame.Label.QoS, frame.Label.SrcTalID, frame.Label.DstTalID, firstOverhead, 0)

	tail := payload[headLen:]
	if len(tail) == 0 {
		return ChunkResult{Data: head}, nil
	}

	tailBuf := gse.EncodeSubsequentFragment(fragID, frame.LabelType, frame.Label, tail, true)
	tailPacket := packet.BuildWithHeader(tailBuf, packet.ProtocolGSE, frame.Label.QoS, frame.Label.SrcTalID, frame.Label.DstTalID, subOverhead, 0)
	return ChunkResult{Data: head, Remaining: tailPacket}, nil
}
