package sno

import "fmt"

// Minimum encoded sizes, used to reject counts that cannot fit before
// allocating for them.
const (
	sizeV3          = 12
	sizeBoundingBox = 2 * sizeV3
	sizeDoor        = 4 + 4*sizeV3 + 4
	sizeSpot        = 4*sizeV3 + 1
	sizeVertex      = 2*sizeV3 + 4 + 8
	sizeFace        = 6
	sizeSurface     = 1 + 3*4
	sizeTriangleSec = 4 * sizeV3
	sizeNodal       = 1 + 4
	sizeGeneralConn = 2 + 2*sizeV3
	sizeBsp         = sizeBoundingBox + 1 + 2 + 1
	sizeLogicalMesh = 1 + sizeBoundingBox + 4*4 + sizeBsp
)

func (d *decoder) v3() (V3, error) {
	x, err := d.c.F32()
	if err != nil {
		return V3{}, err
	}
	y, err := d.c.F32()
	if err != nil {
		return V3{}, err
	}
	z, err := d.c.F32()
	if err != nil {
		return V3{}, err
	}
	return V3{X: x, Y: y, Z: z}, nil
}

func (d *decoder) color() (Color, error) {
	b, err := d.c.take(4)
	if err != nil {
		return Color{}, err
	}
	return Color{R: b[0], G: b[1], B: b[2], A: b[3]}, nil
}

func (d *decoder) tcoords() (Tcoords, error) {
	u, err := d.c.F32()
	if err != nil {
		return Tcoords{}, err
	}
	v, err := d.c.F32()
	if err != nil {
		return Tcoords{}, err
	}
	return Tcoords{U: u, V: v}, nil
}

func (d *decoder) boundingBox() (BoundingBox, error) {
	lo, err := d.v3()
	if err != nil {
		return BoundingBox{}, err
	}
	hi, err := d.v3()
	if err != nil {
		return BoundingBox{}, err
	}
	return BoundingBox{Min: lo, Max: hi}, nil
}

func (d *decoder) version() (Version, error) {
	major, err := d.c.U32()
	if err != nil {
		return Version{}, err
	}
	minor, err := d.c.U32()
	if err != nil {
		return Version{}, err
	}
	return Version{Major: major, Minor: minor}, nil
}

// v3s reads n consecutive vectors into dst.
func (d *decoder) v3s(dst ...*V3) error {
	for _, p := range dst {
		v, err := d.v3()
		if err != nil {
			return err
		}
		*p = v
	}
	return nil
}

func (d *decoder) u16s(count uint64) ([]uint16, error) {
	if err := d.c.fits(count, 2); err != nil {
		return nil, err
	}
	out := make([]uint16, count)
	for i := range out {
		v, err := d.c.U16()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (d *decoder) u32s(count uint64) ([]uint32, error) {
	if err := d.c.fits(count, 4); err != nil {
		return nil, err
	}
	out := make([]uint32, count)
	for i := range out {
		v, err := d.c.U32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (d *decoder) door() (Door, error) {
	var door Door
	var err error
	if door.ID, err = d.c.U32(); err != nil {
		return Door{}, err
	}
	if err := d.v3s(&door.Center, &door.XAxis, &door.YAxis, &door.ZAxis); err != nil {
		return Door{}, err
	}
	n, err := d.c.U32()
	if err != nil {
		return Door{}, err
	}
	if door.VertexArray, err = d.u32s(uint64(n)); err != nil {
		return Door{}, at("vertex_array", err)
	}
	return door, nil
}

func (d *decoder) spot() (Spot, error) {
	var s Spot
	if err := d.v3s(&s.Axes[0], &s.Axes[1], &s.Axes[2], &s.Center); err != nil {
		return Spot{}, err
	}
	label, err := d.c.CString()
	if err != nil {
		return Spot{}, at("label", err)
	}
	s.Label = label
	return s, nil
}

func (d *decoder) vertex() (Vertex, error) {
	var v Vertex
	if err := d.v3s(&v.Position, &v.Normal); err != nil {
		return Vertex{}, err
	}
	var err error
	if v.Color, err = d.color(); err != nil {
		return Vertex{}, err
	}
	if v.UVCoords, err = d.tcoords(); err != nil {
		return Vertex{}, err
	}
	return v, nil
}

func (d *decoder) face() (Face, error) {
	a, err := d.c.U16()
	if err != nil {
		return Face{}, err
	}
	b, err := d.c.U16()
	if err != nil {
		return Face{}, err
	}
	c, err := d.c.U16()
	if err != nil {
		return Face{}, err
	}
	return Face{A: a, B: b, C: c}, nil
}

func (d *decoder) surface() (Surface, error) {
	var s Surface
	var err error
	if s.Texture, err = d.c.CString(); err != nil {
		return Surface{}, at("texture", err)
	}
	if s.StartCorner, err = d.c.U32(); err != nil {
		return Surface{}, err
	}
	if s.SpanCorner, err = d.c.U32(); err != nil {
		return Surface{}, err
	}
	if s.VertexCount, err = d.c.U32(); err != nil {
		return Surface{}, err
	}
	// Three index entries per face; a trailing partial face is not stored.
	if s.FaceArray, err = readArray(d, uint64(s.VertexCount/3), sizeFace, "face_array", (*decoder).face); err != nil {
		return Surface{}, err
	}
	return s, nil
}

// readArray decodes count records with fn, labelling failures name[i].
func readArray[T any](d *decoder, count uint64, size int, name string, fn func(*decoder) (T, error)) ([]T, error) {
	if err := d.c.fits(count, size); err != nil {
		return nil, at(name, err)
	}
	out := make([]T, count)
	for i := range out {
		v, err := fn(d)
		if err != nil {
			return nil, at(fmt.Sprintf("%s[%d]", name, i), err)
		}
		out[i] = v
	}
	return out, nil
}
