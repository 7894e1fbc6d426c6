package packet

// BroadcastTalID is the sentinel destination terminal id meaning "every
// receiver accepts this packet" (§3, §6).
const BroadcastTalID = 31

// MaxTalID is the largest terminal id a 5-bit field can carry.
const MaxTalID = 31

// MaxQoS is the largest QoS value a 3-bit field can carry.
const MaxQoS = 7

// LabelType selects which of the four label encodings (§6) a GSE packet
// carries: a full six-byte label, this system's compact three-byte label,
// an implicit broadcast label (no bytes on the wire), or "ReUse" (no
// bytes, reuse the previous packet's triple).
type LabelType uint8

const (
	LabelTypeSixByte LabelType = iota
	LabelTypeThreeByte
	LabelTypeBroadcast
	LabelTypeReUse
)

// Len reports how many label bytes follow the mandatory header fields on
// the wire for this label type.
func (lt LabelType) Len() int {
	switch lt {
	case LabelTypeSixByte:
		return 6
	case LabelTypeThreeByte:
		return 3
	default:
		return 0
	}
}

// Label is this system's three-byte label: source terminal id,
// destination terminal id and QoS, each occupying a whole byte with the
// value masked into its valid low bits, matching the original
// implementation's Gse::setLabel (one field per byte, not packed bit
// ranges straddling bytes).
type Label struct {
	SrcTalID uint8
	DstTalID uint8
	QoS      uint8
}

// NewLabel masks each field into its valid range before storing it,
// mirroring the source implementation's truncate-and-warn behaviour; the
// caller is expected to have already validated the values with Valid.
func NewLabel(srcTalID, dstTalID, qos uint8) Label {
	return Label{
		SrcTalID: srcTalID & 0x1F,
		DstTalID: dstTalID & 0x1F,
		QoS:      qos & 0x07,
	}
}

// Valid reports whether the fields fit in the label's five/five/three bit
// widths without truncation.
func (l Label) Valid() bool {
	return l.SrcTalID&0x1F == l.SrcTalID &&
		l.DstTalID&0x1F == l.DstTalID &&
		l.QoS&0x07 == l.QoS
}

// Encode writes the three label bytes to buf, which must have length >= 3.
func (l Label) Encode(buf []byte) {
	buf[0] = l.SrcTalID & 0x1F
	buf[1] = l.DstTalID & 0x1F
	buf[2] = l.QoS & 0x07
}

// DecodeLabel reads a three-byte label from buf.
func DecodeLabel(buf []byte) Label {
	return Label{
		SrcTalID: buf[0] & 0x1F,
		DstTalID: buf[1] & 0x1F,
		QoS:      buf[2] & 0x07,
	}
}
