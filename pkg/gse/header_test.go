package gse

import (
	"testing"

	"github.com/satcom-sim/encap/pkg/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := GseHeader{Start: true, End: false, LabelType: LabelTypeThreeByte, Length: 0x0ABC}
	buf := make([]byte, HeaderLen)
	h.Encode(buf)

	got, err := DecodeHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestHeaderVariants(t *testing.T) {
	assert.Equal(t, VariantComplete, GseHeader{Start: true, End: true}.Variant())
	assert.Equal(t, VariantFirstFragment, GseHeader{Start: true, End: false}.Variant())
	assert.Equal(t, VariantSubsequentFragment, GseHeader{Start: false, End: false}.Variant())
	assert.Equal(t, VariantSubsequentFragment, GseHeader{Start: false, End: true}.Variant())
}

func TestDecodeHeaderRejectsShortBuffer(t *testing.T) {
	_, err := DecodeHeader([]byte{0x00})
	assert.Error(t, err)
}

func TestIsPadding(t *testing.T) {
	assert.True(t, IsPadding([]byte{0x00, 0x00, 0x01}))
	assert.False(t, IsPadding([]byte{0x00, 0x01}))
	assert.False(t, IsPadding([]byte{0x00}))
}

func TestLabelRoundTripThreeByte(t *testing.T) {
	l := packet.NewLabel(7, 9, 2)
	buf := make([]byte, 3)
	n := EncodeLabel(LabelTypeThreeByte, l, buf)
	assert.Equal(t, 3, n)

	got, consumed, err := ParseLabel(LabelTypeThreeByte, buf)
	require.NoError(t, err)
	assert.Equal(t, 3, consumed)
	assert.Equal(t, l, got)
}

func TestLabelBroadcastConsumesNoBytes(t *testing.T) {
	got, consumed, err := ParseLabel(LabelTypeBroadcast, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, consumed)
	assert.Equal(t, uint8(packet.BroadcastTalID), got.DstTalID)
}

func TestGetFieldsFromLabelBuffer(t *testing.T) {
	buf := []byte{5, 6, 3}
	assert.EqualValues(t, 5, GetSrcTalID(buf))
	assert.EqualValues(t, 6, GetDstTalID(buf))
	assert.EqualValues(t, 3, GetQos(buf))
}

func TestGetFieldsFromFragID(t *testing.T) {
	id := packet.NewFragID(11, 4)
	assert.EqualValues(t, 11, GetSrcTalIDFromFragID(byte(id)))
	assert.EqualValues(t, 4, GetQosFromFragID(byte(id)))
}

func TestCNIExtensionRoundTrip(t *testing.T) {
	ext := CNIExtension{CNI: 0xAABBCCDD, NextProtocolType: uint16(packet.ProtocolIPv4)}
	buf := make([]byte, CNIExtensionLen())
	EncodeCNIExtension(ext, buf)

	got, err := DecodeCNIExtension(buf)
	require.NoError(t, err)
	assert.Equal(t, ext, got)
}

func TestDecodeCNIExtensionRejectsWrongID(t *testing.T) {
	buf := make([]byte, CNIExtensionLen())
	buf[0], buf[1] = 0x12, 0x34
	_, err := DecodeCNIExtension(buf)
	assert.Error(t, err)
}
