// Package packet defines the in-memory representation of network packets,
// containers and bursts that flow through the encapsulation core, along
// with the small set of addressing primitives (terminal labels, fragment
// ids, GSE identifiers) shared by the GSE and Slotted ALOHA engines.
package packet

import "fmt"

// Protocol identifies the upper-layer protocol carried by a Packet.
// Values above 1535 avoid collision with GSE's use of protocol_type < 1536
// to signal an in-band header extension (see pkg/gse).
type Protocol uint16

const (
	ProtocolATM       Protocol = 0x0601
	ProtocolAAL5      Protocol = 0x0602
	ProtocolMPEG2TS   Protocol = 0x0603
	ProtocolULE       Protocol = 0x0604
	ProtocolROHC      Protocol = 0x0605
	ProtocolGSE       Protocol = 0x0607
	ProtocolIP        Protocol = 0x0608
	ProtocolEthernet  Protocol = 0x0609
	ProtocolIPv4      Protocol = 0x0800
	ProtocolARP       Protocol = 0x0806
	ProtocolIPv6      Protocol = 0x86DD
	ProtocolVLAN8021Q Protocol = 0x8100
)

func (p Protocol) String() string {
	switch p {
	case ProtocolATM:
		return "ATM"
	case ProtocolAAL5:
		return "AAL5"
	case ProtocolMPEG2TS:
		return "MPEG2-TS"
	case ProtocolULE:
		return "ULE"
	case ProtocolROHC:
		return "ROHC"
	case ProtocolGSE:
		return "GSE"
	case ProtocolIP:
		return "IP"
	case ProtocolEthernet:
		return "Ethernet"
	case ProtocolIPv4:
		return "IPv4"
	case ProtocolARP:
		return "ARP"
	case ProtocolIPv6:
		return "IPv6"
	case ProtocolVLAN8021Q:
		return "802.1Q"
	default:
		return fmt.Sprintf("Protocol(0x%04x)", uint16(p))
	}
}

// fixedLengths holds the upper-layer protocols whose PDUs have a single,
// constant length and are therefore eligible for GSE packing (§4.3).
var fixedLengths = map[Protocol]int{
	ProtocolMPEG2TS: 188,
	ProtocolAAL5:    48,
}

// FixedLength reports the constant PDU length for protocols that have one,
// and whether the protocol is fixed-length at all.
func FixedLength(p Protocol) (length int, ok bool) {
	length, ok = fixedLengths[p]
	return length, ok
}

// minHeaderLengths is the minimum viable length for build() to accept a
// buffer as a well-formed PDU of the given protocol.
var minHeaderLengths = map[Protocol]int{
	ProtocolIPv4:    20,
	ProtocolIPv6:    40,
	ProtocolEthernet: 14,
	ProtocolROHC:    1,
	ProtocolMPEG2TS: 188,
	ProtocolAAL5:    48,
	ProtocolATM:     53,
}

// MinHeaderLength returns the minimum accepted length for a PDU of protocol
// p, defaulting to 1 byte for protocols with no declared minimum.
func MinHeaderLength(p Protocol) int {
	if l, ok := minHeaderLengths[p]; ok {
		return l
	}
	return 1
}
