package cursor

import "fmt"

// Fields reads a record field after field over a Cursor. The first error sticks: once a read
// fails, every following read returns a zero value and Err reports that first failure.
type Fields struct {
	c   *Cursor
	err error
}

// NewFields reads fields from the current position of c.
func NewFields(c *Cursor) *Fields {
	return &Fields{c: c}
}

// Err returns the first read error, if any.
func (f *Fields) Err() error {
	return f.err
}

// U8 reads one byte.
func (f *Fields) U8() (v uint8) {
	if f.err == nil {
		v, f.err = f.c.ReadByte()
	}
	return
}

// U16 reads a big endian 16 bits value.
func (f *Fields) U16() (v uint16) {
	if f.err == nil {
		v, f.err = f.c.ReadU16()
	}
	return
}

// U24 reads a big endian 24 bits value.
func (f *Fields) U24() (v uint32) {
	if f.err == nil {
		v, f.err = f.c.ReadU24()
	}
	return
}

// U32 reads a big endian 32 bits value.
func (f *Fields) U32() (v uint32) {
	if f.err == nil {
		v, f.err = f.c.ReadU32()
	}
	return
}

// Bytes returns the next n bytes, or n zero bytes once an error occurred.
func (f *Fields) Bytes(n int) (b []byte) {
	if f.err == nil {
		b, f.err = f.c.ReadBytes(n)
	}
	if f.err != nil {
		b = make([]byte, max(n, 0))
	}
	return
}

// Skip moves n bytes forward, failing when fewer remain.
func (f *Fields) Skip(n int) {
	if f.err != nil {
		return
	}
	if f.c.Remaining() < n {
		f.err = fmt.Errorf("skipping %d bytes at offset %d: %w", n, f.c.Pos(), ErrOutOfBounds)
	}
	f.c.Seek(n)
}
