package gse

import (
	"github.com/satcom-sim/encap/pkg/encapfault"
	"github.com/satcom-sim/encap/pkg/packet"
)

// ToPacketLabelType converts the wire-level LabelType into the packet
// model's LabelType.
func ToPacketLabelType(lt LabelType) packet.LabelType {
	switch lt {
	case LabelTypeSixByte:
		return packet.LabelTypeSixByte
	case LabelTypeThreeByte:
		return packet.LabelTypeThreeByte
	case LabelTypeBroadcast:
		return packet.LabelTypeBroadcast
	default:
		return packet.LabelTypeReUse
	}
}

// FromPacketLabelType is the inverse of ToPacketLabelType.
func FromPacketLabelType(lt packet.LabelType) LabelType {
	switch lt {
	case packet.LabelTypeSixByte:
		return LabelTypeSixByte
	case packet.LabelTypeThreeByte:
		return LabelTypeThreeByte
	case packet.LabelTypeBroadcast:
		return LabelTypeBroadcast
	default:
		return LabelTypeReUse
	}
}

// GetSrcTalID reads the source terminal id directly out of a three-byte
// label buffer without building a packet.Label (§4.1's getSrcTalId).
func GetSrcTalID(labelBuf []byte) uint8 {
	return labelBuf[0] & 0x1F
}

// GetDstTalID reads the destination terminal id directly out of a
// three-byte label buffer (§4.1's getDstTalId).
func GetDstTalID(labelBuf []byte) uint8 {
	return labelBuf[1] & 0x1F
}

// GetQos reads the QoS field directly out of a three-byte label buffer
// (§4.1's getQos).
func GetQos(labelBuf []byte) uint8 {
	return labelBuf[2] & 0x07
}

// GetSrcTalIDFromFragID recovers the source terminal id encoded in a
// frag_id byte, without needing the label at all — used by the decoder
// to address a reassembly slot before the label of the first fragment
// has arrived.
func GetSrcTalIDFromFragID(fragID byte) uint8 {
	return packet.FragID(fragID).SrcTalID()
}

// GetQosFromFragID recovers the QoS encoded in a frag_id byte.
func GetQosFromFragID(fragID byte) uint8 {
	return packet.FragID(fragID).QoS()
}

// ParseLabel reads a label of the given wire label type from buf,
// returning the number of bytes consumed. Broadcast and ReUse labels
// consume zero bytes; the caller supplies the triple to use for ReUse
// from its own per-decoder cache.
func ParseLabel(lt LabelType, buf []byte) (packet.Label, int, error) {
	switch lt {
	case LabelTypeThreeByte:
		if len(buf) < 3 {
			return packet.Label{}, 0, encapfault.ErrInvalidLength
		}
		return packet.DecodeLabel(buf[:3]), 3, nil
	case LabelTypeSixByte:
		if len(buf) < 6 {
			return packet.Label{}, 0, encapfault.ErrInvalidLength
		}
		// This system's terminals never exceed the three-byte label's
		// range; a six-byte label's low three bytes carry the same
		// src/dst/qos fields the three-byte form uses.
		return packet.DecodeLabel(buf[:3]), 6, nil
	case LabelTypeBroadcast:
		return packet.Label{DstTalID: packet.BroadcastTalID}, 0, nil
	default: // LabelTypeReUse
		return packet.Label{}, 0, nil
	}
}

// EncodeLabel writes a label of the given wire label type to buf,
// returning the number of bytes written. Broadcast and ReUse write no
// bytes at all — the label is implicit on the wire.
func EncodeLabel(lt LabelType, l packet.Label, buf []byte) int {
	switch lt {
	case LabelTypeThreeByte:
		l.Encode(buf)
		return 3
	case LabelTypeSixByte:
		l.Encode(buf[:3])
		buf[3], buf[4], buf[5] = 0, 0, 0
		return 6
	default:
		return 0
	}
}
