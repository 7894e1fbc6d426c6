package packet

// FragID is the one-byte fragment correlation id used as the key for all
// cross-packet fragmentation state in both the GSE encoder and decoder
// (§3): (src_tal_id & 0x1F) << 3 | (qos & 0x07). The destination terminal
// id is deliberately not recoverable from it — see the open-question
// note at the end of this file.
type FragID uint8

// NewFragID derives a fragment id from a source terminal id and QoS.
func NewFragID(srcTalID, qos uint8) FragID {
	return FragID((srcTalID&0x1F)<<3 | (qos & 0x07))
}

// SrcTalID recovers the source terminal id encoded in the fragment id.
func (f FragID) SrcTalID() uint8 {
	return uint8(f) >> 3 & 0x1F
}

// QoS recovers the QoS encoded in the fragment id.
func (f FragID) QoS() uint8 {
	return uint8(f) & 0x07
}

// MaxFragID is the number of distinct fragment ids (one byte, but only the
// low 8 bits used by NewFragID's construction are ever produced).
const MaxFragID = 256

// Open question (§9, preserved unchanged): the wire format packs
// dst_tal_id into the label but not into the frag_id, so a subsequent
// fragment that arrives out of order cannot be filtered by destination
// before reassembly — the decoder must trust the frag_id's source/QoS and
// defer destination filtering to the completed PDU's label. Extending
// FragID to also carry dst_tal_id would require a wider field and breaks
// wire compatibility with this format; this implementation preserves the
// original behaviour rather than extending it.
