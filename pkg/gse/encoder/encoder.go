package encoder

import (
	"log/slog"
	"time"

	"github.com/satcom-sim/encap/internal/crc"
	"github.com/satcom-sim/encap/pkg/encapfault"
	"github.com/satcom-sim/encap/pkg/gse"
	"github.com/satcom-sim/encap/pkg/packet"
)

// DefaultMaxPacketLength is GSE_MAX_PACKET_LENGTH: the largest on-wire
// GSE packet (header included) this encoder produces.
const DefaultMaxPacketLength = 4096

// Options configures an Encoder.
type Options struct {
	// MaxPacketLength bounds every produced GSE packet, header included.
	MaxPacketLength int
	// PackingThreshold, if non-zero, defers flushing a fixed-length
	// context that still has room for another PDU; the caller arms a
	// timer and calls Flush when it expires (§4.3 step 3). A full context
	// is flushed immediately.
	PackingThreshold time.Duration
	// MaxReuse enables ReUse labels for up to MaxReuse consecutive
	// packets per identifier; 0 forces the three-byte label on every
	// complete/first packet (legacy-decoder compatibility mode, §4.3).
	MaxReuse int
	Logger   *slog.Logger
}

// reuseState tracks how many consecutive ReUse labels have been emitted
// for one identifier.
type reuseState struct {
	count int
}

// DeferredRelease is the intent AddPacket returns when a fixed-length
// context still has room and a non-zero packing threshold is
// configured: the caller should arm a timer for Delay and call
// Flush(ContextID) on expiry.
type DeferredRelease struct {
	Delay     time.Duration
	ContextID uint16
}

// Encoder implements GseEncoder (C3) and ChunkingPort (C8). It is not
// safe for concurrent use — §5 requires single-threaded cooperative
// scheduling per protocol stack instance.
type Encoder struct {
	opts       Options
	contexts   map[packet.GseIdentifier]*PackingContext
	reuse      map[packet.GseIdentifier]*reuseState
	lastLabel  map[packet.GseIdentifier]packet.Label
	pendingExt map[packet.GseIdentifier]gse.CNIExtension
	log        *slog.Logger
}

// New builds an Encoder. A zero-value Options.MaxPacketLength defaults
// to DefaultMaxPacketLength.
func New(opts Options) *Encoder {
	if opts.MaxPacketLength <= 0 {
		opts.MaxPacketLength = DefaultMaxPacketLength
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Encoder{
		opts:       opts,
		contexts:   make(map[packet.GseIdentifier]*PackingContext),
		reuse:      make(map[packet.GseIdentifier]*reuseState),
		lastLabel:  make(map[packet.GseIdentifier]packet.Label),
		pendingExt: make(map[packet.GseIdentifier]gse.CNIExtension),
		log:        logger.With("component", "gse-encoder"),
	}
}

// AddPacket implements the fixed-length packing algorithm (§4.3). It
// either returns a DeferredRelease (arm a timer, call Flush later) or a
// burst of GSE packets produced immediately because the context is now
// full or the packing threshold is zero.
func (e *Encoder) AddPacket(p *packet.Packet) (*DeferredRelease, []*packet.Packet, error) {
	fixedLen, ok := packet.FixedLength(p.Protocol())
	if !ok {
		return nil, nil, encapfault.ErrBadUpperLength
	}
	if p.Len() != fixedLen {
		return nil, nil, encapfault.ErrBadUpperLength
	}

	id := p.Identifier()
	ctx, ok := e.contexts[id]
	if !ok {
		capacity := e.payloadCapacity(id, false)
		ctx = newPackingContext(id, p.Protocol(), fixedLen, capacity)
		e.contexts[id] = ctx
	}
	ctx.add(p.Data())

	if !ctx.full && e.opts.PackingThreshold > 0 {
		return &DeferredRelease{Delay: e.opts.PackingThreshold, ContextID: id.ContextID()}, nil, nil
	}

	packets, err := e.flushContext(ctx)
	return nil, packets, err
}

// Flush drains the packing context addressed by contextID, producing
// its final GSE burst. Fails with ErrUnknownContext if no context with
// that id exists (§4.3).
func (e *Encoder) Flush(contextID uint16) ([]*packet.Packet, error) {
	for _, ctx := range e.contexts {
		if ctx.Identifier.ContextID() == contextID {
			return e.flushContext(ctx)
		}
	}
	return nil, encapfault.ErrUnknownContext
}

func (e *Encoder) flushContext(ctx *PackingContext) ([]*packet.Packet, error) {
	if ctx.Empty() {
		return nil, nil
	}
	data := ctx.drain()
	fragID := packet.NewFragID(ctx.Identifier.SrcTalID, ctx.Identifier.QoS)
	return e.produceGSEPackets(data, ctx.Protocol, ctx.Identifier, fragID)
}

// Encode implements the variable-length path: each upper packet becomes
// exactly one GSE PDU, fragmented if it exceeds MaxPacketLength (§4.3).
func (e *Encoder) Encode(p *packet.Packet) ([]*packet.Packet, error) {
	id := p.Identifier()
	fragID := p.FragID()
	return e.produceGSEPackets(p.Data(), p.Protocol(), id, fragID)
}

// SetHeaderExtensions queues a CNI extension to be attached to the next
// complete (non-fragmented) GSE packet produced for id (§4.3).
func (e *Encoder) SetHeaderExtensions(id packet.GseIdentifier, ext gse.CNIExtension) {
	e.pendingExt[id] = ext
}

func (e *Encoder) labelFor(id packet.GseIdentifier, broadcast bool) (gse.LabelType, packet.Label) {
	label := packet.NewLabel(id.SrcTalID, id.DstTalID, id.QoS)
	if broadcast {
		delete(e.reuse, id)
		return gse.LabelTypeBroadcast, label
	}
	if e.opts.MaxReuse <= 0 {
		e.lastLabel[id] = label
		return gse.LabelTypeThreeByte, label
	}
	st, known := e.reuse[id]
	if known && st.count < e.opts.MaxReuse && e.lastLabel[id] == label {
		st.count++
		return gse.LabelTypeReUse, label
	}
	e.reuse[id] = &reuseState{count: 0}
	e.lastLabel[id] = label
	return gse.LabelTypeThreeByte, label
}

// payloadCapacity returns the maximum number of payload bytes a single
// complete GSE packet for id can hold, used to size a new
// PackingContext. It assumes the worst-case (three-byte) label length;
// ReUse or broadcast labels only free up more room, never less, so
// sizing against the worst case never causes an overflow.
func (e *Encoder) payloadCapacity(id packet.GseIdentifier, broadcast bool) int {
	labelLen := gse.ToPacketLabelType(gse.LabelTypeThreeByte).Len()
	if broadcast {
		labelLen = 0
	}
	capacity := e.opts.MaxPacketLength - (gse.HeaderLen + labelLen + 2)
	if capacity < 0 {
		return 0
	}
	return capacity
}

// produceGSEPackets segments data into one or more GSE packets no
// longer than MaxPacketLength, attaching the label per the reuse policy
// and the upper protocol type, fragmenting across packets when needed
// (§4.3's GSE-packet production).
func (e *Encoder) produceGSEPackets(data []byte, protocol packet.Protocol, id packet.GseIdentifier, fragID packet.FragID) ([]*packet.Packet, error) {
	broadcast := id.DstTalID == packet.BroadcastTalID
	lt, label := e.labelFor(id, broadcast)
	labelLen := gse.ToPacketLabelType(lt).Len()

	completeCap := e.opts.MaxPacketLength - (gse.HeaderLen + labelLen + 2)
	if completeCap < 0 {
		completeCap = 0
	}

	if len(data) <= completeCap {
		return e.produceComplete(id, lt, label, protocol, data)
	}

	firstCap := e.opts.MaxPacketLength - (gse.HeaderLen + 1 + 2 + labelLen)
	subCap := e.opts.MaxPacketLength - (gse.HeaderLen + 1 + labelLen)
	if firstCap <= 0 || subCap <= 0 {
		return nil, encapfault.ErrLengthTooSmall
	}

	// A fragmented PDU's protocol_type is not a separate wire field on
	// any individual fragment — it is the first two bytes of the
	// reassembled stream, exactly like the original implementation's
	// GSE PDU header preceding refragmentation. A trailing CRC-32
	// (ETSI TS 102 606) lets the decoder detect a corrupted or
	// incompletely reassembled PDU.
	pdu := make([]byte, 2+len(data)+4)
	pdu[0] = byte(uint16(protocol) >> 8)
	pdu[1] = byte(uint16(protocol))
	copy(pdu[2:], data)
	sum := crc.Sum32(pdu[:2+len(data)])
	pdu[2+len(data)] = byte(sum >> 24)
	pdu[2+len(data)+1] = byte(sum >> 16)
	pdu[2+len(data)+2] = byte(sum >> 8)
	pdu[2+len(data)+3] = byte(sum)

	var out []*packet.Packet
	totalLength := uint16(len(pdu))

	firstLen := firstCap
	if firstLen > len(pdu) {
		firstLen = len(pdu)
	}
	firstBuf := gse.EncodeFirstFragment(fragID, totalLength, lt, label, pdu[:firstLen])
	out = append(out, wireToPacket(firstBuf, protocol, id, gse.HeaderLen+1+2+labelLen))

	remaining := pdu[firstLen:]
	for len(remaining) > 0 {
		chunkLen := subCap
		end := false
		if chunkLen >= len(remaining) {
			chunkLen = len(remaining)
			end = true
		}
		buf := gse.EncodeSubsequentFragment(fragID, lt, label, remaining[:chunkLen], end)
		out = append(out, wireToPacket(buf, protocol, id, gse.HeaderLen+1+labelLen))
		remaining = remaining[chunkLen:]
	}
	return out, nil
}

// produceComplete builds the single GSE packet carrying data, prepending
// a queued CNI extension ahead of the payload rather than emitting a
// second carrier packet, matching setHeaderExtensions in the original
// implementation: the extension's body is inserted into the same packet
// whose outer protocol_type becomes gse.OuterProtocolCNI, and the PDU's real
// protocol type moves into the extension's next_protocol_type field.
func (e *Encoder) produceComplete(id packet.GseIdentifier, lt gse.LabelType, label packet.Label, protocol packet.Protocol, data []byte) ([]*packet.Packet, error) {
	labelLen := gse.ToPacketLabelType(lt).Len()

	if ext, hasExt := e.pendingExt[id]; hasExt {
		delete(e.pendingExt, id)
		ext.NextProtocolType = uint16(protocol)
		body := make([]byte, gse.CNIExtensionBodyLen()+len(data))
		gse.EncodeCNIExtensionBody(ext, body)
		copy(body[gse.CNIExtensionBodyLen():], data)

		buf := gse.EncodeComplete(lt, label, gse.OuterProtocolCNI, body)
		headerLen := gse.HeaderLen + labelLen + 2 + gse.CNIExtensionBodyLen()
		return []*packet.Packet{wireToPacket(buf, protocol, id, headerLen)}, nil
	}

	buf := gse.EncodeComplete(lt, label, uint16(protocol), data)
	return []*packet.Packet{wireToPacket(buf, protocol, id, gse.HeaderLen+labelLen+2)}, nil
}

func wireToPacket(wire []byte, innerProtocol packet.Protocol, id packet.GseIdentifier, headerLen int) *packet.Packet {
	return packet.BuildWithHeader(wire, packet.ProtocolGSE, id.QoS, id.SrcTalID, id.DstTalID, headerLen, 0)
}
