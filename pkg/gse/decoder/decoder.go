package decoder

import (
	"log/slog"

	"github.com/satcom-sim/encap/internal/crc"
	"github.com/satcom-sim/encap/pkg/encapfault"
	"github.com/satcom-sim/encap/pkg/gse"
	"github.com/satcom-sim/encap/pkg/packet"
)

// MaxFragID bounds the decap buffer pool: slots are keyed by
// frag_id % MaxFragID, and inserting into an occupied slot for a
// different frag_id evicts it (§5's "fixed-size decap buffer pool").
const MaxFragID = 256

// Outcome classifies what one GSE packet did to the decoder's
// reassembly state (§4.4).
type Outcome uint8

const (
	OutcomeComplete Outcome = iota
	OutcomeFragmentStored
	OutcomeOverwrittenContext
	OutcomePadding
	OutcomeContextNotInitialised
)

// Decoder implements GseDecoder (C4). Not safe for concurrent use — §5
// requires single-threaded cooperative scheduling per stack instance.
type Decoder struct {
	thisNodeTalID uint8
	slots         [MaxFragID]*slot
	lastTriple    packet.GseIdentifier
	haveLastTriple bool
	log           *slog.Logger
}

// New builds a Decoder for the node identified by thisNodeTalID;
// packets whose dst_tal_id is neither this id nor broadcast are
// filtered before reassembly.
func New(thisNodeTalID uint8, logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{thisNodeTalID: thisNodeTalID, log: logger.With("component", "gse-decoder")}
}

// Result is the decoded output of one inbound GSE packet.
type Result struct {
	Outcome Outcome
	Packets []*packet.Packet // populated only for OutcomeComplete
}

// Decode processes one GSE wire packet (§4.4). The fixedLength
// callback resolves a protocol to its constant PDU length, mirroring
// pkg/packet.FixedLength for fixed-length inner protocols.
func (d *Decoder) Decode(wire []byte, fixedLength func(packet.Protocol) (int, bool)) (Result, error) {
	if gse.IsPadding(wire) {
		return Result{Outcome: OutcomePadding}, nil
	}

	frame, _, err := gse.Decode(wire)
	if err != nil {
		return Result{}, err
	}
	if frame == nil {
		return Result{Outcome: OutcomePadding}, nil
	}

	label, qos := d.resolveLabel(frame)
	if label.DstTalID != d.thisNodeTalID && label.DstTalID != packet.BroadcastTalID {
		return Result{}, encapfault.ErrNotForThisNode
	}

	switch frame.Header.Variant() {
	case gse.VariantComplete:
		packets, err := d.dispatch(frame.ProtocolType, frame.Payload, label, qos, fixedLength)
		if err != nil {
			return Result{}, err
		}
		return Result{Outcome: OutcomeComplete, Packets: packets}, nil

	case gse.VariantFirstFragment:
		idx := int(frame.FragID) % MaxFragID
		overwritten := d.slots[idx] != nil && d.slots[idx].started && d.slots[idx].fragID != frame.FragID
		s := newSlot(frame.FragID)
		s.started = true
		s.totalLength = frame.TotalLength
		s.label = label
		d.slots[idx] = s
		s.buffer.Write(frame.Payload, &s.crc)
		if overwritten {
			return Result{Outcome: OutcomeOverwrittenContext}, nil
		}
		return Result{Outcome: OutcomeFragmentStored}, nil

	case gse.VariantSubsequentFragment:
		idx := int(frame.FragID) % MaxFragID
		s := d.slots[idx]
		if s == nil || !s.started || s.fragID != frame.FragID {
			return Result{Outcome: OutcomeContextNotInitialised}, nil
		}
		s.buffer.Write(frame.Payload, nil)
		if !s.complete() {
			return Result{Outcome: OutcomeFragmentStored}, nil
		}

		pdu := append([]byte(nil), s.buffer.Bytes()...)
		d.slots[idx] = nil
		if len(pdu) < 6 {
			return Result{}, encapfault.ErrMalformedIndicators
		}
		body, trailer := pdu[:len(pdu)-4], pdu[len(pdu)-4:]
		wantSum := uint32(trailer[0])<<24 | uint32(trailer[1])<<16 | uint32(trailer[2])<<8 | uint32(trailer[3])
		if crc.Sum32(body) != wantSum {
			return Result{}, encapfault.ErrCRCMismatch
		}
		protocolType := uint16(body[0])<<8 | uint16(body[1])
		packets, err := d.dispatch(protocolType, body[2:], s.label, s.label.QoS, fixedLength)
		if err != nil {
			return Result{}, err
		}
		return Result{Outcome: OutcomeComplete, Packets: packets}, nil
	}

	return Result{Outcome: OutcomePadding}, nil
}

// resolveLabel recovers (src, dst, qos) per §4.4: from the label for
// Complete/First variants (with ReUse falling back to the decoder's
// last-triple cache), or from the frag_id for Subsequent fragments.
func (d *Decoder) resolveLabel(frame *gse.Frame) (packet.Label, uint8) {
	switch frame.Header.Variant() {
	case gse.VariantComplete, gse.VariantFirstFragment:
		if frame.LabelType == gse.LabelTypeReUse {
			if d.haveLastTriple {
				l := packet.Label{SrcTalID: d.lastTriple.SrcTalID, DstTalID: d.lastTriple.DstTalID, QoS: d.lastTriple.QoS}
				return l, l.QoS
			}
			return packet.Label{}, 0
		}
		d.lastTriple = packet.GseIdentifier{SrcTalID: frame.Label.SrcTalID, DstTalID: frame.Label.DstTalID, QoS: frame.Label.QoS}
		d.haveLastTriple = true
		return frame.Label, frame.Label.QoS
	default: // Subsequent
		src := gse.GetSrcTalIDFromFragID(byte(frame.FragID))
		qos := gse.GetQosFromFragID(byte(frame.FragID))
		dst := uint8(packet.BroadcastTalID)
		if d.haveLastTriple && d.lastTriple.SrcTalID == src && d.lastTriple.QoS == qos {
			dst = d.lastTriple.DstTalID
		}
		return packet.Label{SrcTalID: src, DstTalID: dst, QoS: qos}, qos
	}
}

// dispatch slices a reassembled PDU's payload into one or more inner
// packets, per §4.4: exact division for fixed-length protocols,
// single packet otherwise. A protocolType below 1536 marks an in-band
// header extension (§4.1/§6) rather than an upper protocol: the
// extension body is pulled off the front of payload, the real
// protocol type comes from the extension's next_protocol_type, and the
// extension is re-attached to every resulting packet so callers can
// recover it with Packet.GetHeaderExtension (§4.4 getHeaderExtensions).
func (d *Decoder) dispatch(protocolType uint16, payload []byte, label packet.Label, qos uint8, fixedLength func(packet.Protocol) (int, bool)) ([]*packet.Packet, error) {
	var extBody []byte
	if protocolType < 1536 {
		ext, err := gse.DecodeCNIExtensionBody(payload)
		if err != nil {
			return nil, err
		}
		extBody = payload[:gse.CNIExtensionBodyLen()]
		payload = payload[gse.CNIExtensionBodyLen():]
		protocolType = ext.NextProtocolType
	}

	proto := packet.Protocol(protocolType)
	attach := func(p *packet.Packet) *packet.Packet {
		if extBody != nil {
			p.AddHeaderExtension(gse.ExtensionCNI, extBody)
		}
		return p
	}

	if length, ok := fixedLength(proto); ok {
		if length <= 0 || len(payload)%length != 0 {
			return nil, encapfault.ErrBadUpperLength
		}
		n := len(payload) / length
		out := make([]*packet.Packet, 0, n)
		for i := 0; i < n; i++ {
			chunk := payload[i*length : (i+1)*length]
			out = append(out, attach(packet.BuildWithHeader(chunk, proto, qos, label.SrcTalID, label.DstTalID, 0, 0)))
		}
		return out, nil
	}

	return []*packet.Packet{attach(packet.BuildWithHeader(payload, proto, qos, label.SrcTalID, label.DstTalID, 0, 0))}, nil
}
