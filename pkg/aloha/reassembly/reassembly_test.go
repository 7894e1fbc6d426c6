package reassembly

import (
	"testing"

	"github.com/satcom-sim/encap/pkg/aloha"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqPkt(pduID uint32, seq, pduNb uint16, qos uint8) aloha.DataPacket {
	return aloha.DataPacket{PduID: pduID, Seq: seq, PduNb: pduNb, QoS: qos, SrcTalID: 3}
}

func TestAddPacketNoPropagationUntilComplete(t *testing.T) {
	r := New(3, nil)
	outcome, pdu := r.AddPacket(seqPkt(1, 0, 2, 0))
	assert.Equal(t, NoPropagation, outcome)
	assert.Nil(t, pdu)
	assert.Equal(t, 1, r.Pending(0))
}

func TestAddPacketPropagatesWhenComplete(t *testing.T) {
	r := New(3, nil)
	r.AddPacket(seqPkt(1, 1, 2, 0))
	outcome, pdu := r.AddPacket(seqPkt(1, 0, 2, 0))
	require.Equal(t, Propagate, outcome)
	require.Len(t, pdu, 2)
	assert.Equal(t, uint16(0), pdu[0].Seq)
	assert.Equal(t, uint16(1), pdu[1].Seq)
	assert.Equal(t, 0, r.Pending(0))
}

func TestAddPacketSortsOutOfOrderSequences(t *testing.T) {
	r := New(3, nil)
	r.AddPacket(seqPkt(5, 2, 3, 1))
	r.AddPacket(seqPkt(5, 0, 3, 1))
	_, pdu := r.AddPacket(seqPkt(5, 1, 3, 1))
	require.Len(t, pdu, 3)
	for i := 0; i < 3; i++ {
		assert.Equal(t, uint16(i), pdu[i].Seq)
	}
}

func TestQosStreamsAreIndependent(t *testing.T) {
	r := New(3, nil)
	r.AddPacket(seqPkt(1, 0, 2, 0))
	r.AddPacket(seqPkt(1, 0, 2, 1))
	assert.Equal(t, 1, r.Pending(0))
	assert.Equal(t, 1, r.Pending(1))
}

func TestHandleOldestDropsStalePDUPastMaxOldCounter(t *testing.T) {
	r := New(3, nil)
	// pdu 1 never completes: only 1 of 2 packets arrives
	r.AddPacket(seqPkt(1, 0, 2, 0))
	require.Equal(t, 1, r.Pending(0))

	// directly exercise the threshold rather than driving maxOldCounter
	// real completions through AddPacket.
	r.oldCount = maxOldCounter + 1
	r.handleOldest(0, 99)

	assert.Equal(t, 0, r.Pending(0))
}

func TestFindOldestPicksNearestByModularDistance(t *testing.T) {
	r := New(3, nil)
	r.AddPacket(seqPkt(10, 0, 2, 0))
	r.AddPacket(seqPkt(20, 0, 2, 0))
	assert.Equal(t, uint32(10), r.oldestID[0])

	// completing pdu 10 should advance oldest to the next nearest
	// pending id, which is 20.
	r.AddPacket(seqPkt(10, 1, 2, 0))
	assert.Equal(t, uint32(20), r.oldestID[0])
}
