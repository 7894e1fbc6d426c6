// Package gse implements the two-byte GSE wire header shared by the
// encoder (pkg/gse/encoder) and decoder (pkg/gse/decoder): the S/E/LT/
// length framing, the per-variant field layout that follows it, and the
// in-band CNI header extension (§4, §6).
package gse

import "github.com/satcom-sim/encap/pkg/encapfault"

// HeaderLen is the size in bytes of the mandatory two-byte GSE header.
const HeaderLen = 2

// GseHeader is the two-byte indicator/length field at the start of every
// GSE packet: bit 15 is Start, bit 14 is End, bits 13-12 are the label
// type, and the low 12 bits are the length field (§6). For every variant
// the length field counts the bytes that follow these two header bytes;
// a first fragment carries the whole PDU's length in its own separate
// total-length field.
type GseHeader struct {
	Start     bool
	End       bool
	LabelType LabelType
	Length    uint16 // 12-bit field, 0-4095
}

// LabelType mirrors packet.LabelType's four values as encoded in the
// header's 2-bit LT field; kept as a distinct type here because the wire
// encoding (2 bits at a fixed offset) is a GSE framing detail, not a
// packet-model concern.
type LabelType uint8

const (
	LabelTypeSixByte   LabelType = 0
	LabelTypeThreeByte LabelType = 1
	LabelTypeBroadcast LabelType = 2
	LabelTypeReUse     LabelType = 3
)

// Encode writes the two header bytes to buf, which must have length >= 2.
func (h GseHeader) Encode(buf []byte) {
	v := uint16(0)
	if h.Start {
		v |= 1 << 15
	}
	if h.End {
		v |= 1 << 14
	}
	v |= uint16(h.LabelType&0x3) << 12
	v |= h.Length & 0x0FFF
	buf[0] = byte(v >> 8)
	buf[1] = byte(v)
}

// DecodeHeader reads the two-byte header from buf. Returns
// encapfault.ErrInvalidLength if buf is shorter than HeaderLen.
func DecodeHeader(buf []byte) (GseHeader, error) {
	if len(buf) < HeaderLen {
		return GseHeader{}, encapfault.ErrInvalidLength
	}
	v := uint16(buf[0])<<8 | uint16(buf[1])
	return GseHeader{
		Start:     v&(1<<15) != 0,
		End:       v&(1<<14) != 0,
		LabelType: LabelType(v >> 12 & 0x3),
		Length:    v & 0x0FFF,
	}, nil
}

// IsPadding reports whether buf begins with a run of GSE padding: a
// two-byte all-zero field observed when at least two bytes remain in the
// burst but none of them can be parsed as a valid header (§4, supplement
// to the wire format — padding carries no S/E/LT semantics of its own,
// it is recognised by exclusion).
func IsPadding(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0 && buf[1] == 0
}

// FragmentVariant identifies which of the three header shapes a GSE
// packet uses, derived from the Start/End bits (§6):
//   - Complete: S=1, E=1 — label only, no frag_id, no total length.
//   - First: S=1, E=0 — frag_id, two-byte total length, then label.
//   - Subsequent: S=0 — frag_id only (E may be 0 or 1).
type FragmentVariant uint8

const (
	VariantComplete FragmentVariant = iota
	VariantFirstFragment
	VariantSubsequentFragment
)

func (h GseHeader) Variant() FragmentVariant {
	switch {
	case h.Start && h.End:
		return VariantComplete
	case h.Start && !h.End:
		return VariantFirstFragment
	default:
		return VariantSubsequentFragment
	}
}
