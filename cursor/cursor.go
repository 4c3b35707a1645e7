// Package cursor provides a seekable big-endian reader over an in-memory buffer.
// Besides plain byte reads it can hand out 4-bit values, keeping the unread low
// half of a byte pending between calls (the layout used by DVD sub-picture RLE).
package cursor

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned when a read needs more bytes than the buffer holds.
var ErrOutOfBounds = errors.New("read out of bounds")

// Cursor reads from a fixed buffer. The zero value is an empty cursor.
type Cursor struct {
	data []byte
	pos  int
	// pending low nibble of the last byte split by ReadNibble/ReadMergedByte
	nibble    byte
	hasNibble bool
}

// New returns a cursor positioned at the start of data.
func New(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Len returns the size of the underlying data.
func (c *Cursor) Len() int {
	return len(c.data)
}

// Pos returns the offset of the next byte to read.
func (c *Cursor) Pos() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

// AtEnd reports whether every byte of the buffer has been consumed.
func (c *Cursor) AtEnd() bool {
	return c.pos >= len(c.data)
}

// Seek moves the cursor by n bytes (negative goes back). The result is clamped to [0, Len].
func (c *Cursor) Seek(n int) {
	c.Goto(c.pos + n)
}

// Goto moves the cursor to the absolute position pos, clamped to [0, Len].
func (c *Cursor) Goto(pos int) {
	switch {
	case pos < 0:
		pos = 0
	case pos > len(c.data):
		pos = len(c.data)
	}
	c.pos = pos
}

// ReadByte implements io.ByteReader.
func (c *Cursor) ReadByte() (b byte, err error) {
	if c.pos >= len(c.data) {
		err = ErrOutOfBounds
		return
	}
	b = c.data[c.pos]
	c.pos++
	return
}

// ReadU16 reads a big endian 16 bits value.
func (c *Cursor) ReadU16() (uint16, error) {
	v, err := c.readUint(2)
	return uint16(v), err
}

// ReadU24 reads a big endian 24 bits value.
func (c *Cursor) ReadU24() (uint32, error) {
	return c.readUint(3)
}

// ReadU32 reads a big endian 32 bits value.
func (c *Cursor) ReadU32() (uint32, error) {
	return c.readUint(4)
}

// readUint reads a big endian value of size bytes. On a short buffer the cursor is
// left at the end and the partial value is discarded.
func (c *Cursor) readUint(size int) (v uint32, err error) {
	if c.Remaining() < size {
		err = fmt.Errorf("reading %d bytes at offset %d (%d left): %w", size, c.pos, c.Remaining(), ErrOutOfBounds)
		c.pos = len(c.data)
		return
	}
	for _, b := range c.data[c.pos : c.pos+size] {
		v = v<<8 | uint32(b)
	}
	c.pos += size
	return
}

// ReadBytes returns the next n bytes. The returned slice aliases the underlying buffer.
// When fewer than n bytes are left, the available bytes are returned along with ErrOutOfBounds.
func (c *Cursor) ReadBytes(n int) (b []byte, err error) {
	if n < 0 {
		err = fmt.Errorf("negative read length %d: %w", n, ErrOutOfBounds)
		return
	}
	end := c.pos + n
	if end > len(c.data) {
		err = fmt.Errorf("reading %d bytes at offset %d (%d left): %w", n, c.pos, c.Remaining(), ErrOutOfBounds)
		end = len(c.data)
	}
	b = c.data[c.pos:end]
	c.pos = end
	return
}

/*
	Half byte mode
*/

// HasNibble reports whether a low nibble is pending.
func (c *Cursor) HasNibble() bool {
	return c.hasNibble
}

// ReadNibble returns the pending nibble if there is one, otherwise it reads a byte,
// returns its high nibble and keeps the low one pending.
func (c *Cursor) ReadNibble() (nibble byte, err error) {
	if c.hasNibble {
		c.hasNibble = false
		nibble = c.nibble
		return
	}
	var b byte
	if b, err = c.ReadByte(); err != nil {
		return
	}
	nibble = b >> 4
	c.nibble = b & 0x0f
	c.hasNibble = true
	return
}

// ReadMergedByte reads 8 bits through the nibble carry: with a pending nibble, the
// result is that nibble followed by the high nibble of the next byte, whose low nibble
// becomes the new pending value. Without one it is a plain byte read.
func (c *Cursor) ReadMergedByte() (v byte, err error) {
	var b byte
	if b, err = c.ReadByte(); err != nil {
		return
	}
	if !c.hasNibble {
		v = b
		return
	}
	v = c.nibble<<4 | b>>4
	c.nibble = b & 0x0f
	return
}

// ResetNibble drops any pending nibble, realigning the cursor on a byte boundary.
// It reports whether the dropped nibble was non zero, which encoders are not supposed to produce.
func (c *Cursor) ResetNibble() (droppedNonZero bool) {
	droppedNonZero = c.hasNibble && c.nibble != 0
	c.hasNibble = false
	c.nibble = 0
	return
}
