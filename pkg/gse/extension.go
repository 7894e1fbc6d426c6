package gse

import "github.com/satcom-sim/encap/pkg/encapfault"

// ExtensionCNI is the protocol_type value (< 1536) reserved to mean "this
// PDU's header carries a Carrier Network Identifier extension" rather
// than an upper-layer protocol (§4.1).
const ExtensionCNI uint16 = 0x00FF

// OuterProtocolCNI is the protocol_type actually written to the wire
// ahead of a CNI-bearing complete packet: the extension id with the
// high-order fragment-id-type bits (0x0300) set, matching the original
// implementation's GSE_EXTENSION_CNI | 0x0300 framing so a decoder can
// tell a CNI extension apart from a bare protocol_type in the same
// 16-bit field space.
const OuterProtocolCNI uint16 = ExtensionCNI | 0x0300

// cniExtensionLen is the byte length of the CNI extension body:
// extension_id (2) + cni (4) + next_protocol_type (2).
const cniExtensionLen = 8

// CNIExtension is the one in-band header extension this implementation
// supports: a 32-bit Carrier Network Identifier plus the real upper
// protocol type it precedes (§4.1).
type CNIExtension struct {
	CNI              uint32
	NextProtocolType uint16
}

// EncodeCNIExtension writes the extension to buf (which must have length
// >= 8): extension_id, cni, next_protocol_type, each big-endian.
func EncodeCNIExtension(ext CNIExtension, buf []byte) {
	buf[0] = byte(ExtensionCNI >> 8)
	buf[1] = byte(ExtensionCNI)
	buf[2] = byte(ext.CNI >> 24)
	buf[3] = byte(ext.CNI >> 16)
	buf[4] = byte(ext.CNI >> 8)
	buf[5] = byte(ext.CNI)
	buf[6] = byte(ext.NextProtocolType >> 8)
	buf[7] = byte(ext.NextProtocolType)
}

// DecodeCNIExtension reads a CNI extension from buf, verifying the
// leading extension_id matches ExtensionCNI.
func DecodeCNIExtension(buf []byte) (CNIExtension, error) {
	if len(buf) < cniExtensionLen {
		return CNIExtension{}, encapfault.ErrInvalidLength
	}
	id := uint16(buf[0])<<8 | uint16(buf[1])
	if id != ExtensionCNI {
		return CNIExtension{}, encapfault.ErrMalformedIndicators
	}
	return CNIExtension{
		CNI:              uint32(buf[2])<<24 | uint32(buf[3])<<16 | uint32(buf[4])<<8 | uint32(buf[5]),
		NextProtocolType: uint16(buf[6])<<8 | uint16(buf[7]),
	}, nil
}

// CNIExtensionLen is the wire length of an encoded CNIExtension.
func CNIExtensionLen() int { return cniExtensionLen }

// cniBodyLen is the length of a CNI extension's body alone (cni +
// next_protocol_type), used when the extension_id is already conveyed by
// the enclosing GSE packet's outer protocol_type (OuterProtocolCNI)
// rather than repeated inline.
const cniBodyLen = 6

// EncodeCNIExtensionBody writes just the cni/next_protocol_type pair to
// buf (which must have length >= 6), for a GSE packet whose outer
// protocol_type is already OuterProtocolCNI; the PDU bytes follow the
// body in the same packet.
func EncodeCNIExtensionBody(ext CNIExtension, buf []byte) {
	buf[0] = byte(ext.CNI >> 24)
	buf[1] = byte(ext.CNI >> 16)
	buf[2] = byte(ext.CNI >> 8)
	buf[3] = byte(ext.CNI)
	buf[4] = byte(ext.NextProtocolType >> 8)
	buf[5] = byte(ext.NextProtocolType)
}

// DecodeCNIExtensionBody is the inverse of EncodeCNIExtensionBody.
func DecodeCNIExtensionBody(buf []byte) (CNIExtension, error) {
	if len(buf) < cniBodyLen {
		return CNIExtension{}, encapfault.ErrInvalidLength
	}
	return CNIExtension{
		CNI:              uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]),
		NextProtocolType: uint16(buf[4])<<8 | uint16(buf[5]),
	}, nil
}

// CNIExtensionBodyLen is the wire length of an encoded CNI extension body.
func CNIExtensionBodyLen() int { return cniBodyLen }
