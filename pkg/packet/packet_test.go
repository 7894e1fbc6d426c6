package packet

import (
	"testing"

	"github.com/satcom-sim/encap/pkg/encapfault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRejectsShortBuffer(t *testing.T) {
	_, err := Build(make([]byte, 10), 10, ProtocolIPv4, 0, 1, 2)
	require.Error(t, err)
	assert.True(t, encapfault.As(err, encapfault.KindMalformed))
}

func TestBuildMasksOutOfRangeFields(t *testing.T) {
	p, err := Build(make([]byte, 188), 188, ProtocolMPEG2TS, 0xFF, 0xFF, 0xFF)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x07), p.QoS())
	assert.Equal(t, uint8(0x1F), p.SrcTalID())
	assert.Equal(t, uint8(0x1F), p.DstTalID())
}

func TestHeaderExtensionDuplicateIsNoop(t *testing.T) {
	p, err := Build(make([]byte, 20), 20, ProtocolIPv4, 0, 1, 2)
	require.NoError(t, err)
	assert.True(t, p.AddHeaderExtension(0x00FF, []byte{1, 2, 3, 4}))
	assert.False(t, p.AddHeaderExtension(0x00FF, []byte{5, 6, 7, 8}))
	data, ok := p.GetHeaderExtension(0x00FF)
	assert.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4}, data)
}

func TestBroadcastDestination(t *testing.T) {
	p, err := Build(make([]byte, 20), 20, ProtocolIPv4, 0, 1, BroadcastTalID)
	require.NoError(t, err)
	assert.True(t, p.IsBroadcast())
}

func TestFixedLengthLookup(t *testing.T) {
	length, ok := FixedLength(ProtocolMPEG2TS)
	assert.True(t, ok)
	assert.Equal(t, 188, length)

	_, ok = FixedLength(ProtocolIPv4)
	assert.False(t, ok)
}

func TestGseIdentifierOrdering(t *testing.T) {
	a := GseIdentifier{SrcTalID: 1, DstTalID: 2, QoS: 3}
	b := GseIdentifier{SrcTalID: 1, DstTalID: 2, QoS: 4}
	c := GseIdentifier{SrcTalID: 1, DstTalID: 3, QoS: 0}
	d := GseIdentifier{SrcTalID: 2, DstTalID: 0, QoS: 0}
	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.True(t, c.Less(d))
	assert.False(t, d.Less(a))
}

func TestContextIDMatchesFlushFormula(t *testing.T) {
	gi := GseIdentifier{SrcTalID: 1, DstTalID: 2, QoS: 3}
	assert.EqualValues(t, 0x113, gi.ContextID())
}

func TestFragIDRoundTrip(t *testing.T) {
	id := NewFragID(5, 3)
	assert.EqualValues(t, 5, id.SrcTalID())
	assert.EqualValues(t, 3, id.QoS())
}

func TestBurstRejectsOverflow(t *testing.T) {
	b := NewBurst("mpeg", ProtocolMPEG2TS, 2)
	p1, _ := Build(make([]byte, 188), 188, ProtocolMPEG2TS, 0, 1, 2)
	p2, _ := Build(make([]byte, 188), 188, ProtocolMPEG2TS, 0, 1, 2)
	p3, _ := Build(make([]byte, 188), 188, ProtocolMPEG2TS, 0, 1, 2)
	assert.True(t, b.Add(p1))
	assert.True(t, b.Add(p2))
	assert.False(t, b.Add(p3))
	assert.Equal(t, 2, b.Len())
}
