package gse

import (
	"github.com/satcom-sim/encap/pkg/encapfault"
	"github.com/satcom-sim/encap/pkg/packet"
)

// Frame is a fully parsed (or about-to-be-encoded) GSE packet: the
// two-byte header plus whichever variant-specific fields its S/E bits
// imply (§6).
type Frame struct {
	Header       GseHeader
	FragID       packet.FragID // valid for First and Subsequent variants
	TotalLength  uint16        // valid for First only: length of the complete reassembled PDU
	LabelType    LabelType
	Label        packet.Label // zero value when LabelType is Broadcast/ReUse and not cached
	ProtocolType uint16       // valid for Complete only
	Payload      []byte
}

// EncodeComplete builds a non-fragmented GSE packet: label, protocol
// type, payload.
func EncodeComplete(lt LabelType, label packet.Label, protocolType uint16, payload []byte) []byte {
	labelLen := ToPacketLabelType(lt).Len()
	body := make([]byte, labelLen+2+len(payload))
	EncodeLabel(lt, label, body)
	body[labelLen] = byte(protocolType >> 8)
	body[labelLen+1] = byte(protocolType)
	copy(body[labelLen+2:], payload)

	h := GseHeader{Start: true, End: true, LabelType: lt, Length: uint16(len(body))}
	buf := make([]byte, HeaderLen+len(body))
	h.Encode(buf)
	copy(buf[HeaderLen:], body)
	return buf
}

// EncodeFirstFragment builds the first fragment of a refragmented PDU:
// frag_id, total length of the whole PDU, label, then this fragment's
// payload.
func EncodeFirstFragment(fragID packet.FragID, totalLength uint16, lt LabelType, label packet.Label, payload []byte) []byte {
	labelLen := ToPacketLabelType(lt).Len()
	body := make([]byte, 1+2+labelLen+len(payload))
	body[0] = byte(fragID)
	body[1] = byte(totalLength >> 8)
	body[2] = byte(totalLength)
	EncodeLabel(lt, label, body[3:])
	copy(body[3+labelLen:], payload)

	h := GseHeader{Start: true, End: false, LabelType: lt, Length: uint16(len(body))}
	buf := make([]byte, HeaderLen+len(body))
	h.Encode(buf)
	copy(buf[HeaderLen:], body)
	return buf
}

// EncodeSubsequentFragment builds a fragment that follows the
// first: frag_id, label (per the original first fragment's label type),
// payload. end marks whether this is the final fragment of the PDU.
func EncodeSubsequentFragment(fragID packet.FragID, lt LabelType, label packet.Label, payload []byte, end bool) []byte {
	labelLen := ToPacketLabelType(lt).Len()
	body := make([]byte, 1+labelLen+len(payload))
	body[0] = byte(fragID)
	EncodeLabel(lt, label, body[1:])
	copy(body[1+labelLen:], payload)

	h := GseHeader{Start: false, End: end, LabelType: lt, Length: uint16(len(body))}
	buf := make([]byte, HeaderLen+len(body))
	h.Encode(buf)
	copy(buf[HeaderLen:], body)
	return buf
}

// Decode parses one GSE packet from the front of buf and returns the
// parsed Frame plus the number of bytes it consumed. Padding is
// signalled by a nil Frame and nil error; the caller should stop
// iterating the container.
func Decode(buf []byte) (*Frame, int, error) {
	if IsPadding(buf) {
		return nil, 0, nil
	}
	h, err := DecodeHeader(buf)
	if err != nil {
		return nil, 0, err
	}
	total := HeaderLen + int(h.Length)
	if total > len(buf) {
		return nil, 0, encapfault.ErrMalformedIndicators
	}
	body := buf[HeaderLen:total]

	f := &Frame{Header: h, LabelType: h.LabelType}

	switch h.Variant() {
	case VariantComplete:
		label, n, err := ParseLabel(h.LabelType, body)
		if err != nil {
			return nil, 0, err
		}
		if len(body) < n+2 {
			return nil, 0, encapfault.ErrMalformedIndicators
		}
		f.Label = label
		f.ProtocolType = uint16(body[n])<<8 | uint16(body[n+1])
		f.Payload = body[n+2:]

	case VariantFirstFragment:
		if len(body) < 3 {
			return nil, 0, encapfault.ErrMalformedIndicators
		}
		f.FragID = packet.FragID(body[0])
		f.TotalLength = uint16(body[1])<<8 | uint16(body[2])
		label, n, err := ParseLabel(h.LabelType, body[3:])
		if err != nil {
			return nil, 0, err
		}
		f.Label = label
		f.Payload = body[3+n:]

	case VariantSubsequentFragment:
		if len(body) < 1 {
			return nil, 0, encapfault.ErrMalformedIndicators
		}
		f.FragID = packet.FragID(body[0])
		label, n, err := ParseLabel(h.LabelType, body[1:])
		if err != nil {
			return nil, 0, err
		}
		f.Label = label
		f.Payload = body[1+n:]
	}

	return f, total, nil
}
