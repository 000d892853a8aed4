package sno

import (
	"bytes"
	"encoding/binary"
	"math"
)

// builder assembles little-endian SNO fixtures.
type builder struct {
	buf bytes.Buffer
}

func (b *builder) u8(v uint8) *builder {
	b.buf.WriteByte(v)
	return b
}

func (b *builder) u16(v uint16) *builder {
	b.buf.Write(binary.LittleEndian.AppendUint16(nil, v))
	return b
}

func (b *builder) u32(v uint32) *builder {
	b.buf.Write(binary.LittleEndian.AppendUint32(nil, v))
	return b
}

func (b *builder) f32(v float32) *builder { return b.u32(math.Float32bits(v)) }

func (b *builder) v3(x, y, z float32) *builder { return b.f32(x).f32(y).f32(z) }

func (b *builder) box() *builder { return b.v3(0, 0, 0).v3(1, 1, 1) }

func (b *builder) cstr(s string) *builder {
	b.buf.WriteString(s)
	return b.u8(0)
}

func (b *builder) raw(p []byte) *builder {
	b.buf.Write(p)
	return b
}

func (b *builder) bytes() []byte { return bytes.Clone(b.buf.Bytes()) }

type counts struct {
	door, spot, vertex, triangle, texture uint32
}

// header writes everything up to and including the optional checksum.
func (b *builder) header(major, minor uint32, c counts) *builder {
	b.raw([]byte(Magic)).u32(major).u32(minor)
	b.u32(c.door).u32(c.spot).u32(c.vertex).u32(c.triangle).u32(c.texture)
	b.box()
	b.v3(0.5, 0.5, 0.5)
	b.u32(7)
	b.u32(1).u32(2).u32(3)
	if major > 6 || (major == 6 && minor >= 2) {
		b.u32(0xCAFEBABE)
	}
	return b
}

// leaf writes a BSP leaf with no triangles and no children.
func (b *builder) leaf() *builder {
	return b.box().u8(1).u16(0).u8(0)
}

// mesh writes a logical mesh with the given general connection bodies
// already encoded by conn, no nodal or triangle sections, and a leaf root.
func (b *builder) mesh(floor uint32, conns int, conn func(*builder)) *builder {
	b.u8(0).box().u32(floor)
	b.u32(uint32(conns))
	for i := 0; i < conns; i++ {
		conn(b)
	}
	b.u32(0) // nodal
	b.u32(0) // triangle sections
	return b.leaf()
}

// connection writes a general connection section, including the center
// and triangle index sub-section only when asked to.
func (b *builder) connection(center, triangles bool) *builder {
	b.u16(42).v3(-1, -1, -1).v3(1, 1, 1)
	if center {
		b.v3(0, 0, 0)
	}
	if triangles {
		b.u32(2).u16(10).u16(11)
		b.u32(1).u16(5)
	}
	return b
}
