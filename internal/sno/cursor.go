package sno

import (
	"encoding/binary"
	"math"
)

// Cursor is a forward-only little-endian reader over an immutable buffer.
// A failed read leaves the offset where it was.
type Cursor struct {
	data []byte
	off  int
}

// NewCursor returns a Cursor positioned at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Offset returns the number of bytes consumed so far.
func (c *Cursor) Offset() int { return c.off }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.off }

func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, &TruncatedInputError{Offset: c.off, Want: n, Remaining: c.Remaining()}
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, nil
}

// U8 reads one byte.
func (c *Cursor) U8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a little-endian uint16.
func (c *Cursor) U16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U32 reads a little-endian uint32.
func (c *Cursor) U32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// F32 reads a little-endian IEEE-754 float32.
func (c *Cursor) F32() (float32, error) {
	v, err := c.U32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// Bytes reads a fixed block of n bytes. The result is a copy.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	b, err := c.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// CString reads bytes up to the first zero byte and consumes the terminator.
// A missing terminator is a truncation.
func (c *Cursor) CString() (string, error) {
	for i := c.off; i < len(c.data); i++ {
		if c.data[i] == 0 {
			s := string(c.data[c.off:i])
			c.off = i + 1
			return s, nil
		}
	}
	return "", &TruncatedInputError{Offset: c.off, Want: c.Remaining() + 1, Remaining: c.Remaining()}
}

// fits reports whether count records of at least size bytes can still be read.
func (c *Cursor) fits(count uint64, size int) error {
	need := count * uint64(size)
	if need > uint64(c.Remaining()) {
		want := c.Remaining() + 1
		if need < uint64(math.MaxInt32) {
			want = int(need)
		}
		return &TruncatedInputError{Offset: c.off, Want: want, Remaining: c.Remaining()}
	}
	return nil
}
