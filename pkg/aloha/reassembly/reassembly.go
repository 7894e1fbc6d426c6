// Package reassembly implements SaReassembler (C6): per-terminal,
// per-qos reassembly of slotted-ALOHA PDUs out of their constituent
// replicas-resolved data packets, tracking the oldest incomplete PDU so
// that a lost packet does not wedge a queue forever.
package reassembly

import (
	"log/slog"
	"sort"

	"github.com/satcom-sim/encap/pkg/aloha"
)

// maxOldCounter bounds how many new PDUs may complete while an older
// one is still incomplete before that older one is dropped (§4.6).
const maxOldCounter = 65535

// Outcome reports whether AddPacket completed a PDU.
type Outcome int

const (
	NoPropagation Outcome = iota
	Propagate
)

type pduKey struct {
	qos   uint8
	pduID uint32
}

// Reassembler holds the in-flight state for a single terminal.
type Reassembler struct {
	talID      uint8
	waiting    map[pduKey][]aloha.DataPacket
	oldestID   map[uint8]uint32
	haveOldest map[uint8]bool
	oldCount   uint32
	log        *slog.Logger
}

// New builds a Reassembler for one terminal's traffic.
func New(talID uint8, logger *slog.Logger) *Reassembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reassembler{
		talID:      talID,
		waiting:    make(map[pduKey][]aloha.DataPacket),
		oldestID:   make(map[uint8]uint32),
		haveOldest: make(map[uint8]bool),
		log:        logger,
	}
}

// AddPacket deposits one resolved replica. When it completes its PDU,
// the ordered packet list is returned together with Propagate.
func (r *Reassembler) AddPacket(packet aloha.DataPacket) (Outcome, []aloha.DataPacket) {
	key := pduKey{qos: packet.QoS, pduID: packet.PduID}
	r.waiting[key] = append(r.waiting[key], packet)

	if uint16(len(r.waiting[key])) == packet.PduNb {
		pdu := r.waiting[key]
		delete(r.waiting, key)

		sort.Slice(pdu, func(i, j int) bool { return pdu[i].Seq < pdu[j].Seq })

		r.oldCount++
		r.handleOldest(packet.QoS, packet.PduID)
		return Propagate, pdu
	}

	if !r.haveOldest[packet.QoS] {
		r.oldestID[packet.QoS] = packet.PduID
		r.haveOldest[packet.QoS] = true
		r.oldCount = 0
	}

	return NoPropagation, nil
}

// handleOldest advances the oldest-incomplete-PDU tracker for qos after
// currentID has just completed, and drops the oldest pending PDU
// outright once too many newer ones have completed in its place.
func (r *Reassembler) handleOldest(qos uint8, currentID uint32) {
	oldest, ok := r.oldestID[qos]
	if !ok {
		return
	}

	if oldest == currentID {
		r.findOldest(qos)
		return
	}

	if r.oldCount > maxOldCounter {
		key := pduKey{qos: qos, pduID: oldest}
		var srcTalID uint8
		if pkts, ok := r.waiting[key]; ok && len(pkts) > 0 {
			srcTalID = pkts[0].SrcTalID
		}
		r.log.Warn("dropping incomplete slotted-ALOHA PDU, at least one packet was lost",
			"pdu_id", oldest, "src_tal_id", srcTalID, "current_id", currentID)
		delete(r.waiting, key)
		r.findOldest(qos)
	}
}

// findOldest recomputes the oldest in-flight PDU id for qos using
// unsigned modular distance, so that wraparound of the PDU id space
// does not confuse "oldest" with "largest".
func (r *Reassembler) findOldest(qos uint8) {
	oldest := r.oldestID[qos]

	var ids []uint32
	for key := range r.waiting {
		if key.qos == qos {
			ids = append(ids, key.pduID)
		}
	}
	if len(ids) == 0 {
		delete(r.oldestID, qos)
		delete(r.haveOldest, qos)
		return
	}

	var minDiff uint32 = 1<<32 - 1
	for _, id := range ids {
		diff := id - oldest // unsigned wraparound is intentional
		if diff < minDiff {
			minDiff = diff
			r.oldestID[qos] = id
			r.oldCount = 0
		}
	}
}

// Pending reports how many PDUs are currently incomplete for qos,
// for diagnostics/tests.
func (r *Reassembler) Pending(qos uint8) int {
	n := 0
	for key := range r.waiting {
		if key.qos == qos {
			n++
		}
	}
	return n
}
