package sno

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorPrimitives(t *testing.T) {
	var b builder
	b.u8(0xAB).u16(0x1234).u32(0xDEADBEEF).f32(-2.5).cstr("door_a").raw([]byte{9, 8, 7})
	c := NewCursor(b.bytes())

	u8, err := c.U8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0xAB), u8)

	u16, err := c.U16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), u16)

	u32, err := c.U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), u32)

	f, err := c.F32()
	require.NoError(t, err)
	assert.Equal(t, float32(-2.5), f)

	s, err := c.CString()
	require.NoError(t, err)
	assert.Equal(t, "door_a", s)
	assert.Equal(t, 1+2+4+4+7, c.Offset())

	blk, err := c.Bytes(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 8, 7}, blk)
	assert.Zero(t, c.Remaining())
}

func TestCursorTruncation(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3})

	_, err := c.U32()
	require.ErrorIs(t, err, ErrTruncatedInput)
	assert.Zero(t, c.Offset(), "failed read must not advance")

	var te *TruncatedInputError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 4, te.Want)
	assert.Equal(t, 3, te.Remaining)

	_, err = c.U16()
	require.NoError(t, err)
	_, err = c.U16()
	assert.ErrorIs(t, err, ErrTruncatedInput)
	assert.Equal(t, 2, c.Offset())
}

func TestCursorCStringUnterminated(t *testing.T) {
	c := NewCursor([]byte("abc"))
	_, err := c.CString()
	assert.ErrorIs(t, err, ErrTruncatedInput)
	assert.Zero(t, c.Offset())
}

func TestCursorCStringEmpty(t *testing.T) {
	c := NewCursor([]byte{0, 'x'})
	s, err := c.CString()
	require.NoError(t, err)
	assert.Empty(t, s)
	assert.Equal(t, 1, c.Offset())
}

func TestCursorBytesCopies(t *testing.T) {
	data := []byte{1, 2}
	blk, err := NewCursor(data).Bytes(2)
	require.NoError(t, err)
	blk[0] = 99
	assert.Equal(t, byte(1), data[0])
}

func TestV3FromFloats(t *testing.T) {
	var b builder
	b.v3(1.0, 2.0, 3.0)
	d := &decoder{c: NewCursor(b.bytes())}
	v, err := d.v3()
	require.NoError(t, err)
	assert.Equal(t, V3{X: 1.0, Y: 2.0, Z: 3.0}, v)
}

func TestVersionAtLeast(t *testing.T) {
	tests := []struct {
		v            Version
		major, minor uint32
		want         bool
	}{
		{Version{6, 2}, 6, 2, true},
		{Version{6, 1}, 6, 2, false},
		{Version{7, 0}, 6, 4, true},
		{Version{5, 9}, 6, 2, false},
		{Version{6, 4}, 6, 4, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.v.AtLeast(tt.major, tt.minor), "%s >= %d.%d", tt.v, tt.major, tt.minor)
	}
}
