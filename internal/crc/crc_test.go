package crc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSum32KnownVector(t *testing.T) {
	assert.EqualValues(t, 0xcbf43926, Sum32([]byte("123456789")))
}

func TestBlockMatchesSum32(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	var running CRC32
	running.Block(data)
	assert.EqualValues(t, Sum32(data), uint32(running))
}

func TestSingleMatchesBlock(t *testing.T) {
	data := []byte{0xde, 0xad, 0xbe, 0xef}
	var viaSingle CRC32
	for _, b := range data {
		viaSingle.Single(b)
	}
	var viaBlock CRC32
	viaBlock.Block(data)
	assert.EqualValues(t, viaBlock, viaSingle)
}

func TestResetClearsState(t *testing.T) {
	var c CRC32
	c.Block([]byte("anything"))
	c.Reset()
	assert.EqualValues(t, 0, c)
}
