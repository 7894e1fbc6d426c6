package fifo

import (
	"testing"

	"github.com/satcom-sim/encap/internal/crc"
	"github.com/stretchr/testify/assert"
)

func TestWriteAccumulates(t *testing.T) {
	b := NewBuffer(4)
	b.Write([]byte{1, 2}, nil)
	b.Write([]byte{3}, nil)
	assert.Equal(t, []byte{1, 2, 3}, b.Bytes())
}

func TestResetKeepsCapacity(t *testing.T) {
	b := NewBuffer(2)
	b.Write([]byte{1, 2, 3, 4, 5}, nil)
	capBefore := b.Cap()
	b.Reset()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, capBefore, b.Cap())
}

func TestWriteFoldsCRC(t *testing.T) {
	b := NewBuffer(4)
	var running crc.CRC32
	b.Write([]byte("123456789"), &running)
	assert.EqualValues(t, crc.Sum32([]byte("123456789")), uint32(running))
}
