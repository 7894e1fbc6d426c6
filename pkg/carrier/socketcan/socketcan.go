// Package socketcan adapts a real or virtual SocketCAN interface into a
// carrier.Carrier: a secondary, non-default transport for the SA/GSE
// frame stream on a CAN-like test bench, alongside the UDP adapter the
// specification treats as the primary external carrier. CAN frames
// carry at most 8 payload bytes, so byte frames are split across
// multiple CAN frames and reassembled on receive.
package socketcan

import (
	"sync"

	sockcan "github.com/brutella/can"

	"github.com/satcom-sim/encap/pkg/carrier"
)

const (
	flagStart = 0x01
	flagEnd   = 0x02
	maxChunk  = 7 // one byte of Data reserved for start/end flags
)

// Bus adapts a brutella/can bus to carrier.Carrier. Only one frame may
// be in flight at a time per instance: concurrent higher-level frames
// would interleave their chunks on the wire with no way to tell them
// apart, so callers serialize their Sends (consistent with the core's
// single-threaded scheduling model, §5).
type Bus struct {
	bus      *sockcan.Bus
	canID    uint32
	mu       sync.Mutex
	listener carrier.FrameListener
	reassemb []byte
}

// New wraps the named SocketCAN interface (or a brutella virtual bus
// name) as a Carrier, tagging every CAN frame it sends with canID.
func New(name string, canID uint32) (*Bus, error) {
	bus, err := sockcan.NewBusForInterfaceWithName(name)
	if err != nil {
		return nil, err
	}
	return &Bus{bus: bus, canID: canID}, nil
}

func (b *Bus) Connect(...any) error {
	go b.bus.ConnectAndPublish()
	return nil
}

func (b *Bus) Disconnect() error {
	return b.bus.Disconnect()
}

// Send splits frame into 8-byte CAN frames, start/end-flagged in the
// first data byte.
func (b *Bus) Send(frame []byte) error {
	if len(frame) == 0 {
		return b.publish(flagStart|flagEnd, nil)
	}
	for offset := 0; offset < len(frame); offset += maxChunk {
		end := offset + maxChunk
		if end > len(frame) {
			end = len(frame)
		}
		var flags uint8
		if offset == 0 {
			flags |= flagStart
		}
		if end == len(frame) {
			flags |= flagEnd
		}
		if err := b.publish(flags, frame[offset:end]); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bus) publish(flags uint8, chunk []byte) error {
	var data [8]byte
	data[0] = flags
	copy(data[1:], chunk)
	return b.bus.Publish(sockcan.Frame{
		ID:     b.canID,
		Length: uint8(1 + len(chunk)),
		Data:   data,
	})
}

// Subscribe registers listener to receive every reassembled frame.
func (b *Bus) Subscribe(listener carrier.FrameListener) error {
	b.mu.Lock()
	b.listener = listener
	b.mu.Unlock()
	b.bus.Subscribe(b)
	return nil
}

// Handle implements brutella/can's frame-handler interface, reassembling
// chunks tagged with this bus's canID and dispatching complete frames.
func (b *Bus) Handle(frame sockcan.Frame) {
	if frame.ID != b.canID || frame.Length == 0 {
		return
	}
	flags := frame.Data[0]
	payload := frame.Data[1:frame.Length]

	b.mu.Lock()
	if flags&flagStart != 0 {
		b.reassemb = b.reassemb[:0]
	}
	b.reassemb = append(b.reassemb, payload...)
	var complete []byte
	if flags&flagEnd != 0 {
		complete = make([]byte, len(b.reassemb))
		copy(complete, b.reassemb)
	}
	listener := b.listener
	b.mu.Unlock()

	if complete != nil && listener != nil {
		listener.Handle(complete)
	}
}
