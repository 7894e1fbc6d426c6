// Package crc implements the table-driven checksum used to validate
// reassembled GSE PDUs.
package crc

import "hash/crc32"

// CRC32 accumulates a CRC-32 (IEEE 802.3 polynomial) value one byte or one
// block at a time. GSE (ETSI TS 102 606) appends a CRC-32 over the
// reassembled PDU to detect fragment corruption or loss; the zero value is
// ready to use and matches the algorithm's initial state.
type CRC32 uint32

// Single folds a single byte into the running checksum.
func (c *CRC32) Single(b byte) {
	*c = CRC32(crc32.Update(uint32(*c), crc32.IEEETable, []byte{b}))
}

// Block folds an entire byte slice into the running checksum.
func (c *CRC32) Block(data []byte) {
	*c = CRC32(crc32.Update(uint32(*c), crc32.IEEETable, data))
}

// Reset sets the checksum back to its initial state.
func (c *CRC32) Reset() {
	*c = 0
}

// Sum32 of a single buffer, independent of any running state.
func Sum32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}
