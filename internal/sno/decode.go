// Package sno decodes SNO scene documents: level geometry, navigation
// connectivity and per-mesh BSP trees.
package sno

import (
	"fmt"
	"os"
)

// DefaultMaxDepth bounds BSP recursion when no option overrides it.
const DefaultMaxDepth = 256

// Option configures a decode.
type Option func(*decoder)

// WithMaxDepth sets the deepest BSP level accepted. The root is depth 0.
func WithMaxDepth(n int) Option {
	return func(d *decoder) {
		d.maxDepth = n
	}
}

type decoder struct {
	c        *Cursor
	ver      Version
	maxDepth int
}

// Decode parses a complete SNO document from data.
// On error no document is returned.
func Decode(data []byte, opts ...Option) (*Document, error) {
	d := &decoder{c: NewCursor(data), maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(d)
	}
	doc, err := d.document()
	if err != nil {
		return nil, fmt.Errorf("sno: %w", err)
	}
	return doc, nil
}

// DecodeFile reads path in full and decodes it.
func DecodeFile(path string, opts ...Option) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sno: read %s: %w", path, err)
	}
	doc, err := Decode(raw, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func (d *decoder) document() (*Document, error) {
	doc := &Document{}

	magic, err := d.c.Bytes(4)
	if err != nil {
		return nil, at("magic", err)
	}
	if string(magic) != Magic {
		return nil, &FormatMismatchError{Expected: Magic, Actual: string(magic)}
	}
	copy(doc.Magic[:], magic)

	if doc.Version, err = d.version(); err != nil {
		return nil, at("version", err)
	}
	d.ver = doc.Version

	for _, f := range []struct {
		name string
		dst  *uint32
	}{
		{"door_count", &doc.DoorCount},
		{"spot_count", &doc.SpotCount},
		{"vertex_count", &doc.VertexCount},
		{"triangle_count", &doc.TriangleCount},
		{"texture_count", &doc.TextureCount},
	} {
		if *f.dst, err = d.c.U32(); err != nil {
			return nil, at(f.name, err)
		}
	}

	if doc.BoundingBox, err = d.boundingBox(); err != nil {
		return nil, at("bounding_box", err)
	}
	if doc.CentroidOffset, err = d.v3(); err != nil {
		return nil, at("centroid_offset", err)
	}

	for _, f := range []struct {
		name string
		dst  *uint32
	}{
		{"tile", &doc.Tile},
		{"reserved0", &doc.Reserved0},
		{"reserved1", &doc.Reserved1},
		{"reserved2", &doc.Reserved2},
	} {
		if *f.dst, err = d.c.U32(); err != nil {
			return nil, at(f.name, err)
		}
	}

	if doc.Version.AtLeast(6, 2) {
		sum, err := d.c.U32()
		if err != nil {
			return nil, at("checksum", err)
		}
		doc.Checksum = &sum
	}

	if doc.DoorArray, err = readArray(d, uint64(doc.DoorCount), sizeDoor, "door_array", (*decoder).door); err != nil {
		return nil, err
	}
	if doc.SpotArray, err = readArray(d, uint64(doc.SpotCount), sizeSpot, "spot_array", (*decoder).spot); err != nil {
		return nil, err
	}
	if doc.VertexArray, err = readArray(d, uint64(doc.VertexCount), sizeVertex, "vertex_array", (*decoder).vertex); err != nil {
		return nil, err
	}
	if doc.SurfaceArray, err = readArray(d, uint64(doc.TextureCount), sizeSurface, "surface_array", (*decoder).surface); err != nil {
		return nil, err
	}

	if doc.LogicalMeshCount, err = d.c.U32(); err != nil {
		return nil, at("logical_mesh_count", err)
	}
	doc.LogicalMesh, err = readArray(d, uint64(doc.LogicalMeshCount), sizeLogicalMesh,
		"logical_mesh", (*decoder).logicalMesh)
	if err != nil {
		return nil, err
	}

	return doc, nil
}
