package sno

import "fmt"

func (d *decoder) logicalMesh() (LogicalMesh, error) {
	var m LogicalMesh
	var err error
	if m.Index, err = d.c.U8(); err != nil {
		return LogicalMesh{}, at("index", err)
	}
	if m.BoundingBox, err = d.boundingBox(); err != nil {
		return LogicalMesh{}, at("bounding_box", err)
	}
	raw, err := d.c.U32()
	if err != nil {
		return LogicalMesh{}, at("floor", err)
	}
	if m.Floor, err = ParseFloor(raw); err != nil {
		return LogicalMesh{}, at("floor", err)
	}

	n, err := d.c.U32()
	if err != nil {
		return LogicalMesh{}, at("general_connection_count", err)
	}
	m.GeneralConnectionSection, err = readArray(d, uint64(n), sizeGeneralConn,
		"general_connection_section", (*decoder).generalConnection)
	if err != nil {
		return LogicalMesh{}, err
	}

	if n, err = d.c.U32(); err != nil {
		return LogicalMesh{}, at("nodal_count", err)
	}
	if m.NodalArray, err = readArray(d, uint64(n), sizeNodal, "nodal_array", (*decoder).nodal); err != nil {
		return LogicalMesh{}, err
	}

	if n, err = d.c.U32(); err != nil {
		return LogicalMesh{}, at("triangle_section_count", err)
	}
	m.TriangleSection, err = readArray(d, uint64(n), sizeTriangleSec,
		"triangle_section", (*decoder).triangleSection)
	if err != nil {
		return LogicalMesh{}, err
	}

	if m.BspTree, err = d.bsp(0); err != nil {
		return LogicalMesh{}, at("bsp_tree", err)
	}
	return m, nil
}

func (d *decoder) generalConnection() (GeneralConnectionSection, error) {
	var g GeneralConnectionSection
	var err error
	if g.NewID, err = d.c.U16(); err != nil {
		return GeneralConnectionSection{}, err
	}
	if err := d.v3s(&g.MinBox, &g.MaxBox); err != nil {
		return GeneralConnectionSection{}, err
	}
	if d.ver.AtLeast(6, 4) {
		center, err := d.v3()
		if err != nil {
			return GeneralConnectionSection{}, at("center", err)
		}
		g.Center = &center
	}
	if d.ver.AtLeast(6, 2) {
		tri, err := d.triangleIndexSection()
		if err != nil {
			return GeneralConnectionSection{}, at("triangles", err)
		}
		g.Triangles = &tri
	}
	return g, nil
}

func (d *decoder) triangleIndexSection() (TriangleIndexSection62, error) {
	var t TriangleIndexSection62
	n, err := d.c.U32()
	if err != nil {
		return t, err
	}
	if t.Triangles, err = d.u16s(uint64(n)); err != nil {
		return t, err
	}
	if n, err = d.c.U32(); err != nil {
		return t, err
	}
	if t.LocalConnections, err = d.u16s(uint64(n)); err != nil {
		return t, err
	}
	return t, nil
}

func (d *decoder) nodal() (NodalSection, error) {
	var s NodalSection
	var err error
	if s.FarID, err = d.c.U8(); err != nil {
		return NodalSection{}, err
	}
	n, err := d.c.U32()
	if err != nil {
		return NodalSection{}, err
	}
	if s.Data, err = d.u16s(2 * uint64(n)); err != nil {
		return NodalSection{}, at("data", err)
	}
	return s, nil
}

func (d *decoder) triangleSection() (TriangleSection, error) {
	var t TriangleSection
	if err := d.v3s(&t.Triangle.A, &t.Triangle.B, &t.Triangle.C, &t.Normal); err != nil {
		return TriangleSection{}, err
	}
	return t, nil
}

func (d *decoder) bsp(depth int) (BspSection, error) {
	if depth > d.maxDepth {
		return BspSection{}, fmt.Errorf("%w: depth %d exceeds %d", ErrRecursionLimitExceeded, depth, d.maxDepth)
	}
	var b BspSection
	var err error
	if b.BoundingBox, err = d.boundingBox(); err != nil {
		return BspSection{}, err
	}
	leaf, err := d.c.U8()
	if err != nil {
		return BspSection{}, err
	}
	b.IsLeaf = leaf != 0
	nt, err := d.c.U16()
	if err != nil {
		return BspSection{}, err
	}
	if b.TriangleData, err = d.u16s(uint64(nt)); err != nil {
		return BspSection{}, at("triangle_data", err)
	}
	nc, err := d.c.U8()
	if err != nil {
		return BspSection{}, err
	}
	if err := d.c.fits(uint64(nc), sizeBsp); err != nil {
		return BspSection{}, at("children", err)
	}
	b.Children = make([]BspSection, nc)
	for i := range b.Children {
		child, err := d.bsp(depth + 1)
		if err != nil {
			return BspSection{}, at(fmt.Sprintf("children[%d]", i), err)
		}
		b.Children[i] = child
	}
	return b, nil
}
