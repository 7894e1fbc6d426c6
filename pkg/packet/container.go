package packet

// Container is a raw byte region from which one or more Packets are
// parsed. It tracks a read cursor so a decoder can pull successive
// packets (or GSE fragments) out of one arriving on-wire frame.
type Container struct {
	data   []byte
	offset int
}

// NewContainer wraps data for sequential parsing starting at offset 0.
func NewContainer(data []byte) *Container {
	return &Container{data: data}
}

// GetPayload returns the bytes from offset to the end of the container.
func (c *Container) GetPayload(offset int) []byte {
	if offset < 0 || offset > len(c.data) {
		return nil
	}
	return c.data[offset:]
}

// Remaining reports how many bytes are left unread from the cursor.
func (c *Container) Remaining() int {
	return len(c.data) - c.offset
}

// Advance moves the read cursor forward by n bytes.
func (c *Container) Advance(n int) {
	c.offset += n
	if c.offset > len(c.data) {
		c.offset = len(c.data)
	}
}

// Offset returns the current read cursor position.
func (c *Container) Offset() int {
	return c.offset
}

// Bytes returns the unread tail of the container, from the current cursor.
func (c *Container) Bytes() []byte {
	return c.data[c.offset:]
}

// Len returns the total container length.
func (c *Container) Len() int {
	return len(c.data)
}
