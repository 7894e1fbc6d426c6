// Package aloha defines the Slotted ALOHA wire types shared by the
// collision resolver (pkg/aloha/resolver), reassembler
// (pkg/aloha/reassembly) and controller (pkg/aloha/controller): the
// random-access data packet header, the control (ACK/error) packet, and
// the unique-id tuple used to deduplicate retransmissions (§3).
package aloha

// BroadcastTalID mirrors packet.BroadcastTalID: terminal ids above it
// are reserved for synthetic/simulated traffic and must never reach an
// ACK (§4.7).
const BroadcastTalID = 31

// UniqueID is the deduplication key for one SA data packet replica:
// (pdu_id, seq, pdu_nb, qos). Two replicas of the same logical packet
// (original + retransmission) share this tuple.
type UniqueID struct {
	PduID uint32
	Seq   uint16
	PduNb uint16
	QoS   uint8
}

// DataPacket is one Slotted ALOHA random-access burst (§3): a fragment
// of a PDU plus the replica-slot ids it was also sent on.
type DataPacket struct {
	PduID       uint32
	TS          uint16 // time slot the packet was deposited into
	Seq         uint16 // sequence within the PDU
	PduNb       uint16 // total packets making up the PDU
	NbReplicas  uint16
	QoS         uint8
	TotalLength uint16
	Replicas    []uint16 // replica slot ids, length == NbReplicas
	Payload     []byte

	// SrcTalID is carried out-of-band by the controller (recovered
	// from the inner-protocol header per §4.7), not part of the SA
	// wire header itself.
	SrcTalID uint8
}

// ID returns the deduplication tuple for this packet.
func (p DataPacket) ID() UniqueID {
	return UniqueID{PduID: p.PduID, Seq: p.Seq, PduNb: p.PduNb, QoS: p.QoS}
}

// ControlType distinguishes the two SaControlPacket kinds (§3).
type ControlType uint8

const (
	ControlTypeERR ControlType = iota
	ControlTypeACK
)

// ControlPacket is one Slotted ALOHA control-frame entry: an ACK or
// error referencing the unique id of the data packet it concerns.
type ControlPacket struct {
	Type        ControlType
	TotalLength uint16
	DstTalID    uint16
	Payload     UniqueID
}
